package schedule

import (
	"iter"
	"slices"
)

// Relation is a lazily evaluated sequence of rows. Nothing is read from the
// underlying slices until the relation is iterated or materialized.
type Relation[T any] struct {
	seq iter.Seq[T]
}

// From wraps rows without copying them.
func From[T any](rows []T) Relation[T] {
	return Relation[T]{seq: slices.Values(rows)}
}

// FromSeq wraps an arbitrary sequence.
func FromSeq[T any](seq iter.Seq[T]) Relation[T] {
	return Relation[T]{seq: seq}
}

// Where keeps the rows for which pred is true.
func (r Relation[T]) Where(pred func(T) bool) Relation[T] {
	return Relation[T]{seq: func(yield func(T) bool) {
		for v := range r.seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}}
}

// All exposes the relation as an iterator.
func (r Relation[T]) All() iter.Seq[T] {
	return r.seq
}

// Collect materializes the relation in iteration order.
func (r Relation[T]) Collect() []T {
	return slices.Collect(r.seq)
}

// SortedBy materializes the relation and sorts it stably with cmp.
func (r Relation[T]) SortedBy(cmp func(a, b T) int) []T {
	out := r.Collect()
	slices.SortStableFunc(out, cmp)
	return out
}

// FilterMap transforms each row, dropping those for which f reports false.
func FilterMap[T, O any](r Relation[T], f func(T) (O, bool)) Relation[O] {
	return Relation[O]{seq: func(yield func(O) bool) {
		for v := range r.seq {
			if o, ok := f(v); ok && !yield(o) {
				return
			}
		}
	}}
}

// Join is an inner hash join. The right side is hashed on first iteration,
// the left side is streamed; output follows left order.
func Join[L, R any, K comparable, O any](
	left Relation[L],
	right Relation[R],
	leftKey func(L) K,
	rightKey func(R) K,
	merge func(L, R) O,
) Relation[O] {
	return Relation[O]{seq: func(yield func(O) bool) {
		table := make(map[K][]R)
		for r := range right.seq {
			k := rightKey(r)
			table[k] = append(table[k], r)
		}
		for l := range left.seq {
			for _, r := range table[leftKey(l)] {
				if !yield(merge(l, r)) {
					return
				}
			}
		}
	}}
}
