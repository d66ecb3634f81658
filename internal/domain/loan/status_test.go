package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Order(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 17)
	for i, info := range c[:16] {
		assert.Equal(t, i+1, info.Step, info.Status)
		assert.NotEmpty(t, info.Label)
	}
	assert.Equal(t, StatusNewRequest, c[0].Status)
	assert.Equal(t, StatusFunded, c[15].Status)
	assert.True(t, c[15].Terminal)
	assert.Equal(t, StatusConditionalItemsNeeded, c[16].Status)
	assert.Zero(t, c[16].Step)

	// callers get a copy
	c[0].Label = "changed"
	assert.Equal(t, "New Request", Catalog()[0].Label)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("  Clear_To_Close ")
	require.NoError(t, err)
	assert.Equal(t, StatusClearToClose, s)

	for _, raw := range []string{"", "approved", "clear to close"} {
		_, err := ParseStatus(raw)
		assert.ErrorIs(t, err, ErrUnknownStatus, raw)
	}
}

func TestStatus_Progress(t *testing.T) {
	assert.Equal(t, 6, StatusNewRequest.PercentComplete())
	assert.Equal(t, 50, StatusAppraisalOrdered.PercentComplete())
	assert.Equal(t, 100, StatusFunded.PercentComplete())

	// side branch reports the step it hangs off
	assert.Equal(t, StatusConditionallyApproved.Step(), StatusConditionalItemsNeeded.Step())
	assert.Equal(t, StatusConditionallyApproved.PercentComplete(), StatusConditionalItemsNeeded.PercentComplete())
	assert.Equal(t, "Conditional Items Needed", StatusConditionalItemsNeeded.Label())

	assert.Zero(t, Status("bogus").Step())
	assert.Zero(t, Status("bogus").PercentComplete())
}

func TestStatus_Next(t *testing.T) {
	n, ok := StatusNewRequest.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusInitialReview, n)

	n, ok = StatusConditionalItemsNeeded.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusConditionallyApproved, n)

	_, ok = StatusFunded.Next()
	assert.False(t, ok)
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		err      error
	}{
		{StatusNewRequest, StatusInitialReview, nil},
		{StatusNewRequest, StatusClosed, nil},
		{StatusUnderwriting, StatusDocsRequested, nil},
		{StatusConditionallyApproved, StatusConditionalItemsNeeded, nil},
		{StatusConditionalItemsNeeded, StatusConditionallyApproved, nil},
		{StatusClosed, StatusFunded, nil},
		{StatusUnderwriting, StatusUnderwriting, ErrSameStatus},
		{StatusFunded, StatusClosed, ErrTerminalStatus},
		{StatusFunded, StatusFunded, ErrTerminalStatus},
		{StatusNewRequest, Status("approved"), ErrUnknownStatus},
	}
	for _, tc := range cases {
		err := CheckTransition(tc.from, tc.to)
		if tc.err == nil {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, tc.err, "%s -> %s", tc.from, tc.to)
		}
	}
}
