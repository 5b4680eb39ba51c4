package strategy

import "container/heap"

// frontierItem is an element of the search frontier.
type frontierItem struct {
	node     int64
	priority float64
	seq      int // insertion sequence, breaks priority ties FIFO
	index    int // Index in the heap for updates
}

// frontier implements heap.Interface for the informed strategies.
// It is a min-heap keyed by (priority, insertion sequence): among entries
// of equal priority the one pushed first is popped first.
type frontier struct {
	items []*frontierItem
	seq   int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	// Primary sort: by priority (min-heap)
	if f.items[i].priority != f.items[j].priority {
		return f.items[i].priority < f.items[j].priority
	}
	// Secondary sort: FIFO within equal priority
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.items[i].index = i
	f.items[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(f.items)
	f.items = append(f.items, item)
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	item.index = -1
	f.items = old[:n-1]
	return item
}

// push is a convenience wrapper around heap.Push. Each entry is stamped
// with the next insertion sequence number.
func (f *frontier) push(node int64, priority float64) {
	f.seq++
	heap.Push(f, &frontierItem{node: node, priority: priority, seq: f.seq})
}

// pop is a convenience wrapper around heap.Pop.
func (f *frontier) pop() *frontierItem {
	return heap.Pop(f).(*frontierItem)
}
