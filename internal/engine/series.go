package engine

import (
	"sort"

	"github.com/sadopc/fleetwatch/internal/model"
)

// Series is a date-keyed financial history kept in sorted order. Dates are
// unique; setting an existing date overwrites it in place, which is how the
// "today" entry tracks live poll aggregates before the server persists its
// own snapshot.
type Series struct {
	points map[string]model.HistoryPoint
	dates  []string
}

func NewSeries() *Series {
	return &Series{points: make(map[string]model.HistoryPoint)}
}

// Replace resets the series from a full server response.
func (s *Series) Replace(m map[string]model.HistoryPoint) {
	s.points = make(map[string]model.HistoryPoint, len(m))
	s.dates = s.dates[:0]
	for d, p := range m {
		s.points[d] = p
		s.dates = append(s.dates, d)
	}
	sort.Strings(s.dates)
}

// Set inserts or overwrites one day.
func (s *Series) Set(date string, p model.HistoryPoint) {
	if _, ok := s.points[date]; !ok {
		i := sort.SearchStrings(s.dates, date)
		s.dates = append(s.dates, "")
		copy(s.dates[i+1:], s.dates[i:])
		s.dates[i] = date
	}
	s.points[date] = p
}

func (s *Series) Len() int { return len(s.dates) }

// Dates returns the sorted date keys. Callers must not mutate the slice.
func (s *Series) Dates() []string { return s.dates }

// At returns the date and point at index i.
func (s *Series) At(i int) (string, model.HistoryPoint) {
	d := s.dates[i]
	return d, s.points[d]
}

// Get looks up one day.
func (s *Series) Get(date string) (model.HistoryPoint, bool) {
	p, ok := s.points[date]
	return p, ok
}

// Points returns a copy of the underlying map, for persistence.
func (s *Series) Points() map[string]model.HistoryPoint {
	out := make(map[string]model.HistoryPoint, len(s.points))
	for d, p := range s.points {
		out[d] = p
	}
	return out
}
