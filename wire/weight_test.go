package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/waitline/wire"
)

func TestWeightOf_DerivesFromTicket(t *testing.T) {
	ticket := wire.NewTicket(42, 3, 1000, 0, 0)

	w := wire.WeightOf(ticket)

	assert.EqualValues(t, 1000, w.Time)
	assert.EqualValues(t, 42, w.Tiebreak)
	assert.EqualValues(t, 3, w.Owner)
}

func TestWeight_Less(t *testing.T) {
	a := wire.Weight{Time: 100, Tiebreak: 5}
	b := wire.Weight{Time: 100, Tiebreak: 6}
	c := wire.Weight{Time: 200, Tiebreak: 0}

	assert.True(t, a.Less(b))
	assert.True(t, a.Less(c))
	assert.False(t, c.Less(a))
}

func TestWeight_Equal_IgnoresOwner(t *testing.T) {
	a := wire.Weight{Time: 100, Tiebreak: 5, Owner: 1}
	b := wire.Weight{Time: 100, Tiebreak: 5, Owner: 2}

	assert.True(t, a.Equal(b))
}

func TestMaxWeight_SortsAfterEverything(t *testing.T) {
	real := wire.Weight{Time: 1 << 40, Tiebreak: 0}
	assert.True(t, real.Less(wire.MaxWeight))
	assert.False(t, wire.MaxWeight.Less(real))
}
