package device

import "fmt"

// StateReader batches independent device reads where partial success is the
// normal case. A transient failure on one field records a diagnostic and
// lets the caller fall back to a default instead of blanking the whole
// status snapshot.
type StateReader struct {
	c    Controller
	errs []string
}

func NewStateReader(c Controller) *StateReader {
	return &StateReader{c: c}
}

// Read runs one read operation against the device. On failure it records a
// diagnostic naming the operation and reports ok=false.
func Read[T any](r *StateReader, name string, op func(Controller) (T, error)) (T, bool) {
	value, err := op(r.c)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("failed to read %s: %v", name, err))

		var zero T
		return zero, false
	}

	return value, true
}

// Finish returns the accumulated diagnostics, possibly empty. It never
// fails; the diagnostics exist for optional logging only.
func (r *StateReader) Finish() []string {
	return r.errs
}
