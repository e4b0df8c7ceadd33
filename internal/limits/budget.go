package limits

import "fmt"

// Budget caps the bytes an interpreter may allocate. A zero limit means
// unlimited.
type Budget struct {
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func MaxMemoryMessage(limit int64) string {
	return fmt.Sprintf("max memory exceeded (%d bytes)", limit)
}

type MaxMemoryError struct {
	Limit int64
}

func (e MaxMemoryError) Error() string {
	return MaxMemoryMessage(e.Limit)
}

func (b *Budget) Charge(n int64) error {
	if b == nil || b.limit == 0 {
		return nil
	}
	if n <= 0 {
		return nil
	}
	if b.used+n > b.limit {
		return MaxMemoryError{Limit: b.limit}
	}
	b.used += n
	return nil
}

// Depth guards call nesting. A zero max means unlimited.
type Depth struct {
	max int
	cur int
}

func NewDepth(max int) *Depth {
	if max < 0 {
		max = 0
	}
	return &Depth{max: max}
}

type MaxRecursionError struct {
	Max int
}

func (e MaxRecursionError) Error() string {
	return fmt.Sprintf("max recursion depth exceeded (%d)", e.Max)
}

// Enter records one more level of nesting. Every successful Enter must be
// paired with Leave.
func (d *Depth) Enter() error {
	if d == nil {
		return nil
	}
	if d.max > 0 && d.cur+1 > d.max {
		return MaxRecursionError{Max: d.max}
	}
	d.cur++
	return nil
}

func (d *Depth) Leave() {
	if d != nil && d.cur > 0 {
		d.cur--
	}
}

func (d *Depth) Current() int {
	if d == nil {
		return 0
	}
	return d.cur
}
