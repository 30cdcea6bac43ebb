// Package bulkqueue is an append-only queue for very large numbers of
// items, drained once in insertion order.
package bulkqueue

import "iter"

// ChunkSize is the number of items per backing chunk. Growing a queue never
// copies items already pushed.
const ChunkSize = 1 << 14

// BulkQueue has a single producer and a single consumer. The zero value is
// an empty queue.
type BulkQueue[T any] struct {
	chunks [][]T
	size   int
}

// New creates an empty queue. sizeHint is the expected number of items.
func New[T any](sizeHint int) *BulkQueue[T] {
	return &BulkQueue[T]{
		chunks: make([][]T, 0, sizeHint/ChunkSize+1),
	}
}

// NewWith creates a queue holding one item.
func NewWith[T any](item T) *BulkQueue[T] {
	q := New[T](1)
	q.Push(item)
	return q
}

func (q *BulkQueue[T]) Push(item T) {
	n := len(q.chunks)
	if n == 0 || len(q.chunks[n-1]) == cap(q.chunks[n-1]) {
		q.chunks = append(q.chunks, make([]T, 0, ChunkSize))
		n++
	}
	q.chunks[n-1] = append(q.chunks[n-1], item)
	q.size++
}

func (q *BulkQueue[T]) Size() int {
	return q.size
}

// Drain yields every item in insertion order and removes it from the queue.
// Chunks are released as soon as they have been yielded. If the consumer
// stops early, the items not yet yielded stay queued.
func (q *BulkQueue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for len(q.chunks) > 0 {
			chunk := q.chunks[0]
			for i := range chunk {
				item := chunk[i]
				var zero T
				chunk[i] = zero
				q.size--
				if !yield(item) {
					q.chunks[0] = chunk[i+1:]
					if len(q.chunks[0]) == 0 {
						q.chunks = q.chunks[1:]
					}
					return
				}
			}
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
		}
	}
}
