package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"loan-pipeline/internal/domain/event"
)

// Async hands events to the wrapped publisher on a goroutine. Publish never
// blocks the caller and never reports downstream failures; they are logged.
type Async struct {
	next    event.Publisher
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next event.Publisher, log logrus.FieldLogger, timeout time.Duration) *Async {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Async{next: next, log: log, timeout: timeout}
}

func (a *Async) Publish(_ context.Context, e event.Event) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// request context may already be done; use our own deadline
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Publish(ctx, e); err != nil {
			a.log.WithFields(logrus.Fields{
				"event":   e.Type,
				"loan_id": e.LoanID,
			}).WithError(err).Warn("downstream notification failed")
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish; called on shutdown.
func (a *Async) Wait() { a.wg.Wait() }
