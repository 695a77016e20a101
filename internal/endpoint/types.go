package endpoint

// Iterator provides streaming access to values.
type Iterator[T any] interface {
	// Next advances to the next value. Returns false when done or on error.
	Next() bool

	// Value returns the current value. Only valid after Next() returns true.
	Value() T

	// Err returns any error encountered during iteration.
	Err() error

	// Close releases resources. Must be called when done.
	Close() error
}

// --- Validation Types ---

type ValidationResult struct {
	Valid           bool
	Message         string
	DetectedVersion string
}

// --- Descriptor Types ---

type Descriptor struct {
	ID          string
	Family      string
	Title       string
	Vendor      string
	Description string
	Categories  []string
	Protocols   []string
	DocsURL     string
	Fields      []*FieldDescriptor
}

type FieldDescriptor struct {
	Key         string
	Label       string
	ValueType   string
	Required    bool
	Sensitive   bool
	Description string
	Placeholder string
}

// --- Slice Iterator ---

// SliceIterator iterates over an in-memory slice.
type SliceIterator[T any] struct {
	items []T
	index int
	cur   T
}

// NewSliceIterator wraps items in an Iterator.
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items}
}

func (it *SliceIterator[T]) Next() bool {
	if it.index >= len(it.items) {
		return false
	}
	it.cur = it.items[it.index]
	it.index++
	return true
}

func (it *SliceIterator[T]) Value() T     { return it.cur }
func (it *SliceIterator[T]) Err() error   { return nil }
func (it *SliceIterator[T]) Close() error { it.index = len(it.items); return nil }
