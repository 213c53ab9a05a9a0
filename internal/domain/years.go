package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidYearRange is returned when a range ends before it starts.
var ErrInvalidYearRange = errors.New("invalid year range")

// YearRange is an inclusive span of calendar years.
type YearRange struct {
	Start int `mapstructure:"start" yaml:"start"`
	End   int `mapstructure:"end"   yaml:"end"`
}

// Validate checks that the range is non-empty and positive.
func (r YearRange) Validate() error {
	if r.Start <= 0 || r.End <= 0 {
		return fmt.Errorf("%w: years must be positive (%d-%d)", ErrInvalidYearRange, r.Start, r.End)
	}
	if r.End < r.Start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidYearRange, r.End, r.Start)
	}
	return nil
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Years returns every year of the range in ascending order.
func (r YearRange) Years() []int {
	if r.End < r.Start {
		return nil
	}
	years := make([]int, 0, r.End-r.Start+1)
	for y := r.Start; y <= r.End; y++ {
		years = append(years, y)
	}
	return years
}

// Len returns the number of years in the range.
func (r YearRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// String formats the range as "start-end".
func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
