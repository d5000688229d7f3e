package parser

import (
	"container/heap"
	"slices"
)

// Merge combines several exports of the same chat (for instance one per
// participant's phone) into a single timeline ordered by timestamp. Each
// input is stably sorted first; ties across inputs keep argument order.
// Inputs are not modified.
func Merge(seqs ...[]Message) []Message {
	total := 0
	h := &msgHeap{}
	sorted := make([][]Message, len(seqs))
	for i, seq := range seqs {
		total += len(seq)
		sorted[i] = SortByTime(seq)
		if len(sorted[i]) > 0 {
			h.items = append(h.items, cursor{seq: i})
		}
	}
	h.seqs = sorted
	heap.Init(h)

	out := make([]Message, 0, total)
	for h.Len() > 0 {
		c := h.items[0]
		out = append(out, sorted[c.seq][c.pos])
		if c.pos+1 < len(sorted[c.seq]) {
			h.items[0].pos++
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
	}
	return out
}

// SortByTime returns a copy of msgs stably sorted by timestamp.
func SortByTime(msgs []Message) []Message {
	out := slices.Clone(msgs)
	slices.SortStableFunc(out, func(a, b Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// cursor points at the next unread message of one input.
type cursor struct {
	seq int
	pos int
}

// msgHeap implements heap.Interface for timestamp-ordered merging.
type msgHeap struct {
	items []cursor
	seqs  [][]Message
}

func (h *msgHeap) head(i int) Message {
	c := h.items[i]
	return h.seqs[c.seq][c.pos]
}

func (h *msgHeap) Len() int { return len(h.items) }

func (h *msgHeap) Less(i, j int) bool {
	a, b := h.head(i), h.head(j)
	if a.Timestamp.Equal(b.Timestamp) {
		return h.items[i].seq < h.items[j].seq
	}
	return a.Timestamp.Before(b.Timestamp)
}

func (h *msgHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *msgHeap) Push(x any) {
	h.items = append(h.items, x.(cursor))
}

func (h *msgHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}
