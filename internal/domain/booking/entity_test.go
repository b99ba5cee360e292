package booking

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstDate(t *testing.T) {
	r := &Request{Dates: []string{"2025-09-14", "2025-08-30", "2025-12-01"}}
	assert.Equal(t, "2025-08-30", r.FirstDate())
	assert.Equal(t, []string{"2025-09-14", "2025-08-30", "2025-12-01"}, r.Dates)
	assert.Equal(t, []string{"2025-08-30", "2025-09-14", "2025-12-01"}, r.SortedDates())

	assert.Equal(t, "", (&Request{}).FirstDate())
}

func TestSortByFirstDate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Request{ID: uuid.New(), Dates: []string{"2025-07-01"}, CreatedAt: base}
	b := &Request{ID: uuid.New(), Dates: []string{"2025-06-15", "2025-08-01"}, CreatedAt: base}
	c := &Request{ID: uuid.New(), CreatedAt: base}
	d := &Request{ID: uuid.New(), Dates: []string{"2025-07-01"}, CreatedAt: base.Add(-time.Hour)}

	reqs := []*Request{c, a, b, d}
	SortByFirstDate(reqs)
	assert.Equal(t, []*Request{b, d, a, c}, reqs)

	again := []*Request{a, d, c, b}
	SortByFirstDate(again)
	assert.Equal(t, reqs, again)
}

func TestCommandValidate(t *testing.T) {
	neg := -10.0
	zero := 0.0

	err := Command{Action: ActionCounter, CounterDetails: "   "}.Validate()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.ErrorIs(t, err, ErrEmptyCounterDetails)

	err = Command{Action: ActionCounter, CounterDetails: "Two photographers", CounterPrice: &neg}.Validate()
	assert.ErrorIs(t, err, ErrNegativePrice)

	assert.NoError(t, Command{Action: ActionCounter, CounterDetails: "Two photographers", CounterPrice: &zero}.Validate())

	for _, p := range []float64{1e10, 1e12, 49.999} {
		p := p
		err = Command{Action: ActionCounter, CounterDetails: "Two photographers", CounterPrice: &p}.Validate()
		assert.Equal(t, KindValidation, KindOf(err), "price %v", p)
		assert.ErrorIs(t, err, ErrPriceOutOfRange, "price %v", p)
	}
	for _, p := range []float64{5000, 1234.56, 9999999999.99} {
		p := p
		assert.NoError(t, Command{Action: ActionCounter, CounterDetails: "Two photographers", CounterPrice: &p}.Validate(), "price %v", p)
	}
	assert.NoError(t, Command{Action: ActionCounter, CounterDetails: "No price yet"}.Validate())
	assert.NoError(t, Command{Action: ActionAccept}.Validate())

	err = Command{Action: "approve"}.Validate()
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestClassify(t *testing.T) {
	price := sql.NullFloat64{Float64: 5000, Valid: true}

	v := Classify(&Request{Status: StatusCountered, CounterOfferDetails: sql.NullString{String: "Add a second shooter", Valid: true}, CounterOfferPrice: price})
	countered, ok := v.(CounteredRequest)
	require.True(t, ok)
	assert.Equal(t, "Add a second shooter", countered.Details)
	assert.Equal(t, 5000.0, *countered.Price)

	v = Classify(&Request{Status: StatusSettledOffline})
	pp, ok := v.(PendingPaymentRequest)
	require.True(t, ok)
	assert.True(t, pp.SettledOffline)

	assert.IsType(t, ConfirmedBooking{}, Classify(&Request{Status: StatusConfirmed}))
	assert.IsType(t, PendingRequest{}, Classify(&Request{Status: StatusPending}))
	for _, s := range []Status{StatusDeclined, StatusCancelled, StatusExpired} {
		closed, ok := Classify(&Request{Status: s}).(ClosedRequest)
		require.True(t, ok)
		assert.Equal(t, s, closed.Outcome)
	}
}
