package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/waitline/wire"
)

func TestNewPass_CarriesTicketProvenance(t *testing.T) {
	ticket := wire.NewTicket(5, 1, 1000, 0, 0)
	ticket.EvictionTime = 1800

	pass := wire.NewPass(ticket, 1, 2000, 500)

	assert.Equal(t, ticket.ID, pass.TicketID)
	assert.EqualValues(t, 1, pass.NodeID)
	assert.EqualValues(t, 1000, pass.QueueJoinTime)
	assert.EqualValues(t, 1800, pass.EvictionTime)
	assert.EqualValues(t, 2500, pass.ExpiryTime)
}

func TestPass_Refresh_ReHomesAndExtends(t *testing.T) {
	ticket := wire.NewTicket(5, 1, 1000, 0, 0)
	pass := wire.NewPass(ticket, 1, 2000, 500)

	refreshed := pass.Refresh(2, 3000, 500)

	assert.EqualValues(t, 2, refreshed.NodeID)
	assert.EqualValues(t, 3500, refreshed.ExpiryTime)
}

func TestPass_Expired(t *testing.T) {
	ticket := wire.NewTicket(5, 1, 1000, 0, 0)
	pass := wire.NewPass(ticket, 1, 2000, 500)

	assert.False(t, pass.Expired(2499))
	assert.True(t, pass.Expired(2501))
}
