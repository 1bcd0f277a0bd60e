package form

// List is an ordered, append/remove-by-index collection. It is a value type:
// Append and RemoveAt return a new List and never modify the receiver, and
// RemoveAt keeps the relative order of the surviving items.
type List[T any] struct {
	items []T
}

// NewList builds a list holding items in order.
func NewList[T any](items ...T) List[T] {
	return List[T]{items: append([]T(nil), items...)}
}

// Len returns the number of items.
func (l List[T]) Len() int {
	return len(l.items)
}

// At returns the item at index.
func (l List[T]) At(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(l.items) {
		return zero, false
	}
	return l.items[index], true
}

// Items returns a copy of the items.
func (l List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Append returns a list with item added at the end.
func (l List[T]) Append(item T) List[T] {
	next := make([]T, len(l.items), len(l.items)+1)
	copy(next, l.items)
	return List[T]{items: append(next, item)}
}

// RemoveAt returns a list without the item at index. An out of range index
// returns the receiver unchanged and false.
func (l List[T]) RemoveAt(index int) (List[T], bool) {
	if index < 0 || index >= len(l.items) {
		return l, false
	}
	next := make([]T, 0, len(l.items)-1)
	next = append(next, l.items[:index]...)
	next = append(next, l.items[index+1:]...)
	return List[T]{items: next}, true
}
