package buffer

import (
	"errors"
	"testing"
)

type recorded struct {
	pos, inserted, deleted, restyled int
	deletedText                      string
}

func record(b *TextBuffer) *[]recorded {
	var got []recorded
	b.AddModifyCallback(func(pos, inserted, deleted, restyled int, deletedText string) {
		got = append(got, recorded{pos, inserted, deleted, restyled, deletedText})
	})
	return &got
}

func TestEditScenario(t *testing.T) {
	b := New()
	b.SetText("hello")
	if got := b.Text(); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	b.Insert(5, " world")
	if got := b.Text(); got != "hello world" {
		t.Fatalf("expected hello world, got %q", got)
	}
	b.Remove(0, 6)
	if got := b.Text(); got != "world" {
		t.Fatalf("expected world, got %q", got)
	}
	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := b.Text(); got != "hello world" {
		t.Fatalf("expected hello world after undo, got %q", got)
	}
}

func TestTextRangeReplaceIsNoOp(t *testing.T) {
	const text = "one two\nthree"
	for start := 0; start <= len(text); start++ {
		for end := start; end <= len(text); end++ {
			b := NewWithText(text)
			s, ok := b.TextRange(start, end)
			if !ok {
				t.Fatalf("TextRange(%d, %d) reported failure", start, end)
			}
			b.Replace(start, end, s)
			if got := b.Text(); got != text {
				t.Fatalf("replace(%d, %d) changed content to %q", start, end, got)
			}
		}
	}
}

func TestTextRangeOutsideBuffer(t *testing.T) {
	b := NewWithText("abc")
	if _, ok := b.TextRange(2, 1); ok {
		t.Fatalf("expected reversed range to fail")
	}
	if _, ok := b.TextRange(0, 4); ok {
		t.Fatalf("expected range past the end to fail")
	}
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	const text = "alpha beta"
	for pos := 0; pos <= len(text); pos++ {
		b := NewWithText(text)
		b.Insert(pos, "xyz")
		b.Remove(pos, pos+3)
		if got := b.Text(); got != text {
			t.Fatalf("round trip at %d gave %q", pos, got)
		}
	}
}

func TestInsertPastEndAppends(t *testing.T) {
	b := NewWithText("ab")
	b.Insert(10, "c")
	if got := b.Text(); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestRemoveOrdersBounds(t *testing.T) {
	b := NewWithText("abcdef")
	b.Remove(4, 1)
	if got := b.Text(); got != "aef" {
		t.Fatalf("expected aef, got %q", got)
	}
}

func TestAppendNotifiesOnce(t *testing.T) {
	b := New()
	got := record(b)
	b.Append("x")
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	if c := (*got)[0]; c.inserted != 1 || c.deleted != 0 || c.pos != 0 {
		t.Fatalf("unexpected notification %+v", c)
	}
}

func TestReplaceNotifiesOnce(t *testing.T) {
	b := NewWithText("hello world")
	got := record(b)
	b.Replace(0, 5, "howdy!")
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	want := recorded{pos: 0, inserted: 6, deleted: 5, deletedText: "hello"}
	if (*got)[0] != want {
		t.Fatalf("expected %+v, got %+v", want, (*got)[0])
	}
}

func TestSetTextFullRangeChange(t *testing.T) {
	b := NewWithText("old")
	got := record(b)
	b.SetText("brand new")
	want := recorded{pos: 0, inserted: 9, deleted: 3, deletedText: "old"}
	if len(*got) != 1 || (*got)[0] != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		b.AddModifyCallback(func(int, int, int, int, string) { order = append(order, i) })
	}
	b.Append("a")
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRemoveModifyCallback(t *testing.T) {
	b := New()
	calls := 0
	id := b.AddModifyCallback(func(int, int, int, int, string) { calls++ })
	b.Append("a")
	b.RemoveModifyCallback(id)
	b.Append("b")
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if b.ListenerCount() != 0 {
		t.Fatalf("expected no listeners, got %d", b.ListenerCount())
	}
}

func TestRemoveListenerDuringDispatch(t *testing.T) {
	b := New()
	var second ListenerID
	secondCalls := 0
	b.AddModifyCallback(func(int, int, int, int, string) { b.RemoveModifyCallback(second) })
	second = b.AddModifyCallback(func(int, int, int, int, string) { secondCalls++ })
	b.Append("a")
	if secondCalls != 0 {
		t.Fatalf("listener removed mid-dispatch was still called")
	}
}

func TestCallModifyCallbacksReplaysLastChange(t *testing.T) {
	b := New()
	b.Append("abc")
	got := record(b)
	b.CallModifyCallbacks()
	want := recorded{pos: 0, inserted: 3}
	if len(*got) != 1 || (*got)[0] != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestCopyIntoEmptyBufferClones(t *testing.T) {
	src := NewWithText("shared text\nline two")
	dst := New()
	srcCalls := 0
	src.AddModifyCallback(func(int, int, int, int, string) { srcCalls++ })
	dst.Copy(src, 0, src.Length(), 0)
	if dst.Text() != src.Text() {
		t.Fatalf("expected %q, got %q", src.Text(), dst.Text())
	}
	if srcCalls != 0 {
		t.Fatalf("source listeners must not fire on copy")
	}
}

func TestCopyIntoSelfPanics(t *testing.T) {
	b := NewWithText("abc")
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument panic, got %v", r)
		}
	}()
	b.Copy(b, 0, 1, 2)
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewWithText("original")
	c := b.Clone()
	c.Append("!")
	if b.Text() != "original" || c.Text() != "original!" {
		t.Fatalf("clone shares storage: %q / %q", b.Text(), c.Text())
	}
	if c.HasUndo() {
		t.Fatalf("clone should start with empty history")
	}
}

func TestPositionOutOfRangePanics(t *testing.T) {
	b := New()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument panic, got %v", r)
		}
	}()
	b.Insert(MaxPos+1, "x")
}

func TestCloseReleasesOnce(t *testing.T) {
	b := NewWithText("abc")
	calls := 0
	b.AddModifyCallback(func(int, int, int, int, string) { calls++ })
	b.Close()
	b.Close()
	if !b.Closed() || b.Length() != 0 || b.ListenerCount() != 0 {
		t.Fatalf("close did not release storage")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected mutation of closed buffer to panic")
		}
		if calls != 0 {
			t.Fatalf("listeners fired after close")
		}
	}()
	b.Append("x")
}

func TestTabDistanceRestyles(t *testing.T) {
	b := NewWithText("a\tb")
	got := record(b)
	b.SetTabDistance(4)
	if b.TabDistance() != 4 {
		t.Fatalf("expected 4, got %d", b.TabDistance())
	}
	want := recorded{pos: 0, restyled: 3}
	if len(*got) != 1 || (*got)[0] != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestModifiedTracksSavedSnapshot(t *testing.T) {
	b := NewWithText("abc")
	if b.Modified() {
		t.Fatalf("fresh buffer should not be modified")
	}
	b.Append("d")
	if !b.Modified() {
		t.Fatalf("expected modified after append")
	}
	b.Remove(3, 4)
	if b.Modified() {
		t.Fatalf("content matches snapshot again, expected clean")
	}
}
