package engine

import (
	"fmt"
	"sync/atomic"
)

// PONumberSource issues PO numbers as PO-<year>-<sequence> with the
// sequence monotonically increasing for the process lifetime. The
// counter is atomic, not derived from counting existing rows; the
// repository's uniqueness check is the backstop against collisions.
type PONumberSource struct {
	year int
	seq  atomic.Int64
}

// NewPONumberSource starts numbering for a year after the last issued
// sequence (0 for a fresh year).
func NewPONumberSource(year int, lastSeq int64) *PONumberSource {
	s := &PONumberSource{year: year}
	s.seq.Store(lastSeq)
	return s
}

// Next returns the next PO number.
func (s *PONumberSource) Next() string {
	n := s.seq.Add(1)
	return fmt.Sprintf("PO-%d-%04d", s.year, n)
}

// Year returns the year the source numbers for.
func (s *PONumberSource) Year() int {
	return s.year
}
