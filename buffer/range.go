package buffer

// Range is a half-open byte range [Start, End) over buffer content.
type Range struct {
	Start, End int
}

func NewRange(a, b int) Range {
	if a <= b {
		return Range{Start: a, End: b}
	}
	return Range{Start: b, End: a}
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Empty() bool { return r.Start == r.End }

func (r Range) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// span is a selection or highlight. An inactive span has no range; an
// empty range is never active.
type span struct {
	active bool
	r      Range
}

func (s *span) set(start, end int) {
	s.r = NewRange(start, end)
	s.active = !s.r.Empty()
	if !s.active {
		s.r = Range{}
	}
}

func (s *span) clear() {
	s.active = false
	s.r = Range{}
}

func (s span) position() (Range, bool) {
	if !s.active {
		return Range{}, false
	}
	return s.r, true
}

// update moves the span across an edit that deleted `deleted` bytes and
// inserted `inserted` bytes at pos.
func (s *span) update(pos, deleted, inserted int) {
	if !s.active || pos > s.r.End {
		return
	}
	delta := inserted - deleted
	switch {
	case pos+deleted <= s.r.Start:
		s.r.Start += delta
		s.r.End += delta
	case pos <= s.r.Start && pos+deleted >= s.r.End:
		s.clear()
	case pos <= s.r.Start:
		s.r.Start = pos
		s.r.End += delta
	case pos < s.r.End:
		if pos+deleted >= s.r.End {
			s.r.End = pos
		} else {
			s.r.End += delta
		}
		if s.r.End <= s.r.Start {
			s.clear()
		}
	}
}
