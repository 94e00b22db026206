package engine

// PageSize is the number of trailing entries shown per chart page.
const PageSize = 7

// Window is a contiguous [Start, End) slice of a date-sorted series.
type Window struct {
	Start, End int
	length     int
}

// SliceWindow derives the window ending at endIndex (exclusive) over a
// series of length n. Pass endIndex <= 0 for "latest". The end is clamped
// to [PageSize, n] when the series is non-trivial so the boundary pages
// still show a full week.
func SliceWindow(n, endIndex int) Window {
	if n <= 0 {
		return Window{}
	}
	if endIndex <= 0 || endIndex > n {
		endIndex = n
	}
	if endIndex < PageSize {
		endIndex = PageSize
	}
	if endIndex > n {
		endIndex = n
	}
	start := endIndex - PageSize
	if start < 0 {
		start = 0
	}
	return Window{Start: start, End: endIndex, length: n}
}

// Shift pages the window by delta pages and re-derives the bounds. Paging
// past either edge sticks to the boundary page instead of wrapping.
func (w Window) Shift(delta int) Window {
	end := w.End + delta*PageSize
	if end < PageSize {
		end = PageSize
	}
	return SliceWindow(w.length, end)
}

// HasPrev reports whether older data exists before the window.
func (w Window) HasPrev() bool { return w.Start > 0 }

// HasNext reports whether newer data exists past the window.
func (w Window) HasNext() bool { return w.End < w.length }

func (w Window) Len() int { return w.End - w.Start }
