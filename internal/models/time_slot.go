package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShiftType distinguishes the two daily teaching shifts.
type ShiftType string

const (
	ShiftMorning   ShiftType = "mati"
	ShiftAfternoon ShiftType = "tarda"
)

// ShiftPart selects a sub-range inside a shift.
type ShiftPart string

const (
	ShiftPartFull   ShiftPart = "full"
	ShiftPartFirst  ShiftPart = "first"
	ShiftPartSecond ShiftPart = "second"
)

// TimeSlot is a canonical (day, start, end, shift) tuple. Slots are created
// on demand and never updated or deleted; assignments reference them by id.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	SlotType  ShiftType `db:"slot_type" json:"slot_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SlotTimes resolves the canonical start/end times for a shift sub-range.
// Morning runs 09:00-14:30 with a half-hour break at 11:00; afternoon runs
// 15:00-19:30 with a break at 17:00.
func SlotTimes(shift ShiftType, part ShiftPart) (start, end string, err error) {
	switch shift {
	case ShiftMorning:
		switch part {
		case ShiftPartFirst:
			return "09:00:00", "11:00:00", nil
		case ShiftPartSecond:
			return "11:30:00", "14:30:00", nil
		case ShiftPartFull:
			return "09:00:00", "14:30:00", nil
		}
	case ShiftAfternoon:
		switch part {
		case ShiftPartFirst:
			return "15:00:00", "17:00:00", nil
		case ShiftPartSecond:
			return "17:30:00", "19:30:00", nil
		case ShiftPartFull:
			return "15:00:00", "19:30:00", nil
		}
	}
	return "", "", fmt.Errorf("unknown shift %q part %q", shift, part)
}

// ShiftHoursPerWeek returns the weekly teaching hours a full shift carries.
func ShiftHoursPerWeek(shift ShiftType) int {
	if shift == ShiftMorning {
		return 6
	}
	return 5
}

// MinuteOfDay converts a "HH:MM" or "HH:MM:SS" time string to minutes since
// midnight. Malformed input yields -1.
func MinuteOfDay(t string) int {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return -1
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return hours*60 + minutes
}
