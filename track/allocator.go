package track

import (
	"container/heap"
	"fmt"
)

// initialCapacity is the handle range a fresh allocator starts with.
const initialCapacity = 16

// intHeap is a min-heap of available handles.
type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intHeap) Push(x interface{}) {
	*h = append(*h, x.(int))
}

func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Allocator hands out non-negative integer handles and recycles released
// ones. Acquire always returns the lowest available handle, so recycled
// handles are reused before the sequence grows. Capacity doubles whenever
// the available pool runs dry; previously issued handles stay valid across
// growth.
type Allocator struct {
	capacity  int
	free      intHeap
	available []bool // indexed by handle, true while in the free pool
}

// NewAllocator creates an allocator with the initial capacity fully
// available.
func NewAllocator() *Allocator {
	a := &Allocator{
		capacity:  initialCapacity,
		free:      make(intHeap, 0, initialCapacity),
		available: make([]bool, initialCapacity),
	}
	for i := 0; i < initialCapacity; i++ {
		a.free = append(a.free, i)
		a.available[i] = true
	}
	heap.Init(&a.free)
	return a
}

// Acquire returns the lowest available handle, doubling capacity first if
// the pool is empty.
func (a *Allocator) Acquire() int {
	if a.free.Len() == 0 {
		a.grow()
	}
	h := heap.Pop(&a.free).(int)
	a.available[h] = false
	return h
}

// Release returns a handle to the available pool. Releasing a handle
// outside [0, Capacity()) or one that is already available is a caller bug
// and panics.
func (a *Allocator) Release(h int) {
	if h < 0 || h >= a.capacity {
		panic(fmt.Sprintf("track: released handle %d outside range [0, %d)", h, a.capacity))
	}
	if a.available[h] {
		panic(fmt.Sprintf("track: released handle %d is already available", h))
	}
	a.available[h] = true
	heap.Push(&a.free, h)
}

func (a *Allocator) grow() {
	doubled := a.capacity * 2
	for i := a.capacity; i < doubled; i++ {
		heap.Push(&a.free, i)
		a.available = append(a.available, true)
	}
	a.capacity = doubled
}

// Capacity returns the size of the current handle range.
func (a *Allocator) Capacity() int {
	return a.capacity
}

// Available returns how many handles are in the free pool.
func (a *Allocator) Available() int {
	return a.free.Len()
}

// Living returns how many handles are currently issued.
func (a *Allocator) Living() int {
	return a.capacity - a.free.Len()
}
