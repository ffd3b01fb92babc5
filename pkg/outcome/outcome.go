// Package outcome provides a tagged success/failure container.
//
// Configuration steps against the camera session can fail without the
// surrounding pipeline terminating. Outcome carries either a value or an
// error through channels that must stay open across individual failures.
package outcome

// Outcome holds either a value or an error, never both.
// The zero Outcome is a failure with a nil error; construct with OK or Fail.
type Outcome[T any] struct {
	value T
	err   error
	ok    bool
}

// OK wraps a successful value.
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Fail wraps a failure.
func Fail[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// Value returns the value and whether the outcome is a success.
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.ok
}

// Err returns the error for a failed outcome, nil otherwise.
func (o Outcome[T]) Err() error {
	if o.ok {
		return nil
	}
	return o.err
}

// IsOK reports whether the outcome is a success.
func (o Outcome[T]) IsOK() bool {
	return o.ok
}

// Unwrap returns the value and error in Go's usual pair form.
func (o Outcome[T]) Unwrap() (T, error) {
	if o.ok {
		return o.value, nil
	}
	var zero T
	return zero, o.err
}

// Map transforms a successful outcome's value, passing failures through.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	if v, ok := o.Value(); ok {
		return OK(fn(v))
	}
	return Fail[U](o.err)
}
