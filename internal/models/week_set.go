package models

import (
	"fmt"
	"sort"
)

// SemesterWeeks is the fixed number of teaching weeks in a semester.
const SemesterWeeks = 15

// WeekSet describes which weeks of a semester a booking is active for:
// either the whole semester or an explicit subset of week numbers.
type WeekSet struct {
	FullSemester bool  `json:"is_full_semester"`
	Weeks        []int `json:"weeks,omitempty"`
}

// FullWeekSet returns a set covering every week of the semester.
func FullWeekSet() WeekSet {
	return WeekSet{FullSemester: true}
}

// ExplicitWeekSet returns a set covering only the given week numbers.
func ExplicitWeekSet(weeks []int) WeekSet {
	cp := make([]int, len(weeks))
	copy(cp, weeks)
	sort.Ints(cp)
	return WeekSet{Weeks: cp}
}

// Validate checks the set is persistable: explicit sets must be non-empty,
// within 1..SemesterWeeks and free of duplicates.
func (w WeekSet) Validate() error {
	if w.FullSemester {
		return nil
	}
	if len(w.Weeks) == 0 {
		return fmt.Errorf("week set: at least one week must be selected")
	}
	seen := make(map[int]struct{}, len(w.Weeks))
	for _, week := range w.Weeks {
		if week < 1 || week > SemesterWeeks {
			return fmt.Errorf("week set: week %d out of range 1..%d", week, SemesterWeeks)
		}
		if _, dup := seen[week]; dup {
			return fmt.Errorf("week set: week %d selected twice", week)
		}
		seen[week] = struct{}{}
	}
	return nil
}

// EffectiveWeeks returns the weeks the set actually covers, sorted ascending.
// A full-semester set expands to 1..SemesterWeeks regardless of stored weeks.
func (w WeekSet) EffectiveWeeks() []int {
	if w.FullSemester {
		weeks := make([]int, SemesterWeeks)
		for i := range weeks {
			weeks[i] = i + 1
		}
		return weeks
	}
	weeks := make([]int, len(w.Weeks))
	copy(weeks, w.Weeks)
	sort.Ints(weeks)
	return weeks
}

// Overlap returns the sorted intersection of both effective week sets.
// An empty result means the sets never share a week.
func (w WeekSet) Overlap(other WeekSet) []int {
	mine := make(map[int]struct{}, SemesterWeeks)
	for _, week := range w.EffectiveWeeks() {
		mine[week] = struct{}{}
	}
	var shared []int
	for _, week := range other.EffectiveWeeks() {
		if _, ok := mine[week]; ok {
			shared = append(shared, week)
		}
	}
	sort.Ints(shared)
	return shared
}

// IntersectWeeks returns the sorted intersection of an arbitrary week list
// with this set's effective weeks.
func (w WeekSet) IntersectWeeks(weeks []int) []int {
	return w.Overlap(ExplicitWeekSet(weeks))
}
