package track

// SegmentStore owns the live segment records, addressed by recyclable
// handles. Removing a record leaves a tombstone in its slot until the
// allocator reissues the handle to a later insert.
type SegmentStore struct {
	alloc *Allocator
	slots []*Segment
}

// NewSegmentStore returns an empty store.
func NewSegmentStore() *SegmentStore {
	return &SegmentStore{alloc: NewAllocator()}
}

// Insert stores a segment record and returns its handle.
func (s *SegmentStore) Insert(seg Segment) SegmentHandle {
	h := s.alloc.Acquire()
	for h >= len(s.slots) {
		s.slots = append(s.slots, nil)
	}
	s.slots[h] = &seg
	return SegmentHandle(h)
}

// Get returns the record stored under h, or false for tombstoned or
// never-issued handles.
func (s *SegmentStore) Get(h SegmentHandle) (Segment, bool) {
	if int(h) < 0 || int(h) >= len(s.slots) || s.slots[h] == nil {
		return Segment{}, false
	}
	return *s.slots[h], true
}

// Remove tombstones the record and recycles its handle. The range and
// double-release checks of Allocator.Release apply, so removing a handle
// that is not live panics.
func (s *SegmentStore) Remove(h SegmentHandle) {
	s.alloc.Release(int(h))
	s.slots[h] = nil
}

// Living returns the handles that currently hold a record, in ascending
// order.
func (s *SegmentStore) Living() []SegmentHandle {
	out := make([]SegmentHandle, 0, s.alloc.Living())
	for i, seg := range s.slots {
		if seg != nil {
			out = append(out, SegmentHandle(i))
		}
	}
	return out
}

// Count returns the number of live records.
func (s *SegmentStore) Count() int {
	return s.alloc.Living()
}
