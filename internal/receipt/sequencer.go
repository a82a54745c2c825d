// Package receipt issues the sequential numbers printed on payment receipts.
//
// A Sequencer is created once when the process starts and lives only in
// memory: numbering restarts at 001 after every restart, so receipt numbers
// are unique within one process lifetime only.
package receipt

import (
	"fmt"
	"sync/atomic"
)

// Sequencer hands out receipt numbers 001, 002, 003, ...
// It is safe for concurrent use; no two calls to Next return the same number.
type Sequencer struct {
	next atomic.Int64
}

// New returns a Sequencer whose first number is 001.
func New() *Sequencer {
	return NewFrom(1)
}

// NewFrom returns a Sequencer whose first number is start.
func NewFrom(start int64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next consumes and returns the next receipt number, zero-padded to three
// digits. Numbers of 1000 and above simply grow wider.
func (s *Sequencer) Next() string {
	return Format(s.next.Add(1) - 1)
}

// Peek returns the value the next call to Next will consume.
func (s *Sequencer) Peek() int64 {
	return s.next.Load()
}

// Format renders n the way it is printed on a receipt.
func Format(n int64) string {
	return fmt.Sprintf("%03d", n)
}
