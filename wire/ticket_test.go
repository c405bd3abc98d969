package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/wire"
)

func TestNewTicket_SetsRefreshAndExpiryWindows(t *testing.T) {
	ticket := wire.NewTicket(1, 7, 1000, 200, 500)

	assert.Equal(t, wire.Normal, ticket.Type)
	assert.EqualValues(t, 1000, ticket.JoinTime)
	assert.EqualValues(t, 1200, ticket.NextRefreshTime)
	assert.EqualValues(t, 1500, ticket.ExpiryTime)
	assert.Equal(t, wire.NoPositionEstimate, ticket.PreviousPositionEstimate)
}

func TestNewDrainTicket_SortsFirstAndNeverExpires(t *testing.T) {
	normal := wire.NewTicket(2, 1, 1000, 200, 500)
	drain := wire.NewDrainTicket(1, 1)

	assert.True(t, drain.Less(normal))
	assert.False(t, drain.Expired(clock.Time(1<<62)))
}

func TestTicket_Expired(t *testing.T) {
	ticket := wire.NewTicket(1, 1, 1000, 200, 500)

	assert.False(t, ticket.Expired(1499))
	assert.True(t, ticket.Expired(1501))
}

func TestTicket_Refresh_UpdatesWindowsAndPositionEstimate(t *testing.T) {
	ticket := wire.NewTicket(1, 1, 1000, 200, 500)

	refreshed := ticket.Refresh(2000, 200, 500, 3)

	assert.EqualValues(t, 2200, refreshed.NextRefreshTime)
	assert.EqualValues(t, 2500, refreshed.ExpiryTime)
	assert.Equal(t, 3, refreshed.PreviousPositionEstimate)
	assert.EqualValues(t, 1000, refreshed.JoinTime, "join time is immutable across refreshes")
}

func TestTicket_Less_OrdersByJoinTimeThenID(t *testing.T) {
	a := wire.NewTicket(1, 1, 1000, 0, 0)
	b := wire.NewTicket(2, 1, 1000, 0, 0)
	c := wire.NewTicket(1, 1, 2000, 0, 0)

	assert.True(t, a.Less(b), "equal join time breaks tie on id")
	assert.False(t, b.Less(a))
	assert.True(t, a.Less(c))
}

func TestTicket_WithSkip(t *testing.T) {
	ticket := wire.NewTicket(1, 1, 1000, 0, 0).WithSkip()
	assert.Equal(t, wire.Skip, ticket.Type)
}
