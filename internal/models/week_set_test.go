package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekSetValidate(t *testing.T) {
	assert.NoError(t, FullWeekSet().Validate())
	assert.NoError(t, ExplicitWeekSet([]int{1, 7, 15}).Validate())

	assert.Error(t, ExplicitWeekSet(nil).Validate())
	assert.Error(t, ExplicitWeekSet([]int{0}).Validate())
	assert.Error(t, ExplicitWeekSet([]int{16}).Validate())
	assert.Error(t, ExplicitWeekSet([]int{3, 3}).Validate())
}

func TestWeekSetEffectiveWeeks(t *testing.T) {
	full := FullWeekSet().EffectiveWeeks()
	require.Len(t, full, SemesterWeeks)
	assert.Equal(t, 1, full[0])
	assert.Equal(t, SemesterWeeks, full[len(full)-1])

	// explicit weeks come back sorted
	assert.Equal(t, []int{2, 5, 9}, ExplicitWeekSet([]int{9, 2, 5}).EffectiveWeeks())
}

func TestWeekSetOverlap(t *testing.T) {
	full := FullWeekSet()
	partial := ExplicitWeekSet([]int{5, 6, 7})

	// a full-semester booking collides with any explicit subset
	assert.Equal(t, []int{5, 6, 7}, full.Overlap(partial))
	assert.Equal(t, []int{5, 6, 7}, partial.Overlap(full))

	firstHalf := ExplicitWeekSet([]int{1, 2, 3, 4, 5, 6, 7})
	secondHalf := ExplicitWeekSet([]int{8, 9, 10, 11, 12, 13, 14, 15})
	assert.Empty(t, firstHalf.Overlap(secondHalf))
	assert.Empty(t, secondHalf.Overlap(firstHalf))

	edge := ExplicitWeekSet([]int{7, 8})
	assert.Equal(t, []int{7}, firstHalf.Overlap(edge))
	assert.Equal(t, []int{7}, edge.Overlap(firstHalf))
}

func TestWeekSetIntersectWeeks(t *testing.T) {
	set := ExplicitWeekSet([]int{1, 2, 3})
	assert.Equal(t, []int{2, 3}, set.IntersectWeeks([]int{3, 2, 9}))
	assert.Empty(t, set.IntersectWeeks([]int{10, 11}))
}

func TestExplicitWeekSetCopiesInput(t *testing.T) {
	weeks := []int{3, 1, 2}
	set := ExplicitWeekSet(weeks)
	weeks[0] = 99
	assert.Equal(t, []int{1, 2, 3}, set.EffectiveWeeks())
}
