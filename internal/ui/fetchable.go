package ui

import "time"

// LoadState tracks the progression of data loading for a Fetchable field.
type LoadState int

const (
	LoadIdle  LoadState = iota // never fetched
	LoadReady                  // loaded at least once
	LoadError                  // failed, no prior data
)

// Fetchable wraps a value with loading state metadata.
type Fetchable[T any] struct {
	Data      T
	State     LoadState
	Fetching  bool // orthogonal: is a fetch in flight?
	Err       error
	FetchedAt time.Time
}

// SetData replaces Data wholesale and clears any earlier error.
func (f *Fetchable[T]) SetData(data T) {
	f.Data = data
	f.State = LoadReady
	f.Fetching = false
	f.Err = nil
	f.FetchedAt = time.Now()
}

// SetError records an error. If prior data exists the state is preserved
// (stale data kept). Otherwise state becomes LoadError.
func (f *Fetchable[T]) SetError(err error) {
	f.Err = err
	f.Fetching = false
	if !f.HasData() {
		f.State = LoadError
	}
}

// SetFetching marks a fetch as in-flight without changing state or data.
func (f *Fetchable[T]) SetFetching() {
	f.Fetching = true
}

// Reset forgets everything, as when the thing being fetched changes identity.
func (f *Fetchable[T]) Reset() {
	*f = Fetchable[T]{}
}

// HasData returns true when data has been loaded at least once.
func (f *Fetchable[T]) HasData() bool {
	return f.State == LoadReady
}

// Stale reports whether the shown data is from before a failed refresh.
func (f *Fetchable[T]) Stale() bool {
	return f.HasData() && f.Err != nil
}

// IsFetching returns true when a fetch is in-flight.
func (f *Fetchable[T]) IsFetching() bool {
	return f.Fetching
}
