package bench

import "fmt"

// InsertError reports a statement failure during the batched insert. The
// remaining batch for the variant is abandoned; partial inserts are not
// rolled back, since transactional semantics are not under test.
type InsertError struct {
	Variant string
	Row     int
	Err     error
}

func (e *InsertError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("insert into %s: %v", e.Variant, e.Err)
	}

	return fmt.Sprintf("insert into %s: row %d: %v", e.Variant, e.Row, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// QueryError reports a failure during a read benchmark.
type QueryError struct {
	Variant string
	Phase   string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s against %s: %v", e.Phase, e.Variant, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// SizeQueryError reports a storage-accounting query failure.
type SizeQueryError struct {
	Variant string
	Err     error
}

func (e *SizeQueryError) Error() string {
	return fmt.Sprintf("index size of %s: %v", e.Variant, e.Err)
}

func (e *SizeQueryError) Unwrap() error {
	return e.Err
}
