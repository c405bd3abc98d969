package kendalltau_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/waitline/kendalltau"
)

func TestDistance_WikipediaExample(t *testing.T) {
	x := []int{1, 2, 3, 4, 5}
	y := []int{3, 4, 1, 2, 5}

	assert.Equal(t, 4, kendalltau.Distance(x, y))
	assert.InDelta(t, 0.4, kendalltau.Normalised(x, y), 1e-9)
}

func TestDistance_IdenticalOrderIsZero(t *testing.T) {
	x := []int{1, 2, 3, 4, 5}
	assert.Equal(t, 0, kendalltau.Distance(x, x))
	assert.Equal(t, float64(0), kendalltau.Normalised(x, x))
}

func TestDistance_FullyReversedIsMaximal(t *testing.T) {
	x := []int{1, 2, 3, 4}
	y := []int{4, 3, 2, 1}

	assert.Equal(t, 6, kendalltau.Distance(x, y))
	assert.InDelta(t, 1.0, kendalltau.Normalised(x, y), 1e-9)
}

func TestNormalised_ShortSequenceIsZero(t *testing.T) {
	assert.Equal(t, float64(0), kendalltau.Normalised([]int{1}, []int{1}))
	assert.Equal(t, float64(0), kendalltau.Normalised([]int{}, []int{}))
}

func TestDistance_MismatchedLengthPanics(t *testing.T) {
	assert.Panics(t, func() {
		kendalltau.Distance([]int{1, 2}, []int{1})
	})
}
