package buffer

// ModifyFunc receives every change to a buffer: at pos, inserted bytes were
// added and deleted bytes (deletedText) removed; restyled is the length of
// a range whose presentation changed without a content change.
type ModifyFunc func(pos, inserted, deleted, restyled int, deletedText string)

// ListenerID identifies a registered ModifyFunc for removal.
type ListenerID int

type listener struct {
	id      ListenerID
	fn      ModifyFunc
	removed bool
}

// Change is the argument set of one notification.
type Change struct {
	Pos         int
	Inserted    int
	Deleted     int
	Restyled    int
	DeletedText string
}

// AddModifyCallback registers fn; it is called after every subsequent
// change, in registration order, until removed.
func (b *TextBuffer) AddModifyCallback(fn ModifyFunc) ListenerID {
	b.nextListener++
	id := b.nextListener
	b.listeners = append(b.listeners, &listener{id: id, fn: fn})
	return id
}

// RemoveModifyCallback unregisters the listener. Removing an unknown ID is
// a no-op. A listener removed while a notification is being delivered does
// not receive it.
func (b *TextBuffer) RemoveModifyCallback(id ListenerID) {
	for i, l := range b.listeners {
		if l.id == id {
			l.removed = true
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount reports how many listeners are registered.
func (b *TextBuffer) ListenerCount() int { return len(b.listeners) }

// CallModifyCallbacks re-delivers the last recorded change to every
// listener. With no recorded change, listeners get an all-zero event.
func (b *TextBuffer) CallModifyCallbacks() {
	b.dispatch(b.lastChange)
}

// LastChange returns the most recently delivered change.
func (b *TextBuffer) LastChange() (Change, bool) {
	return b.lastChange, b.hasLastChange
}

func (b *TextBuffer) notify(c Change) {
	b.lastChange = c
	b.hasLastChange = true
	b.dispatch(c)
}

func (b *TextBuffer) dispatch(c Change) {
	if len(b.listeners) == 0 {
		return
	}
	snapshot := make([]*listener, len(b.listeners))
	copy(snapshot, b.listeners)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(c.Pos, c.Inserted, c.Deleted, c.Restyled, c.DeletedText)
	}
}
