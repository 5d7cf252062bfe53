package history

import "fmt"

// QueryError describes a failed statement.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func newQueryError(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}
