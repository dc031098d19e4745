package events

import (
	"container/heap"
	"context"
	"errors"
	"io"
)

// MergedSource combines several sources into one stream ordered by
// timestamp. Recording sessions often split a day across files, so this is
// how a full day's timeline is rebuilt. Events with equal timestamps come
// out in source order.
type MergedSource struct {
	sources []Source
	heap    *eventHeap
	started bool
}

// NewMergedSource creates a Source that merges sources by timestamp.
func NewMergedSource(sources ...Source) *MergedSource {
	return &MergedSource{
		sources: sources,
		heap:    &eventHeap{},
	}
}

// Next returns the oldest pending event across all sources, or io.EOF.
func (m *MergedSource) Next(ctx context.Context) (*Event, error) {
	if !m.started {
		m.started = true
		if err := m.fill(ctx); err != nil {
			return nil, err
		}
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(m.heap).(*heapItem)

	next, err := m.sources[item.sourceIdx].Next(ctx)
	switch {
	case err == nil:
		heap.Push(m.heap, &heapItem{event: next, sourceIdx: item.sourceIdx})
	case !errors.Is(err, io.EOF):
		return nil, err
	}

	return item.event, nil
}

// fill reads the first event of every source.
func (m *MergedSource) fill(ctx context.Context) error {
	heap.Init(m.heap)

	for i, src := range m.sources {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.heap, &heapItem{event: ev, sourceIdx: i})
	}

	return nil
}

// Close closes every source and returns the first error.
func (m *MergedSource) Close() error {
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	event     *Event
	sourceIdx int
}

// eventHeap orders pending events by timestamp, then by source index.
type eventHeap []*heapItem

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if c := h[i].event.Timestamp.Compare(h[j].event.Timestamp); c != 0 {
		return c < 0
	}
	return h[i].sourceIdx < h[j].sourceIdx
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
