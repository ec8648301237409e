package tradelog

import (
	"fmt"
	"iter"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Identifier compute a unique identifier for the Range.
func (r Range) Identifier() string {
	if r.From == r.To {
		return r.From.String()
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}

// Period is a cache expiry granularity.
type Period int

const (
	Daily Period = iota
	Monthly
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	default:
		return "daily"
	}
}

// Range returns the Range for the given period containing the date d.
func (p Period) Range(d Date) Range {
	switch p {
	case Monthly:
		return Range{From: NewDate(d.Year(), d.Month(), 1), To: NewDate(d.Year(), d.Month()+1, 0)}
	default:
		return Range{From: d, To: d}
	}
}
