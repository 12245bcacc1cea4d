package catalog

import "fmt"

// ValidationError rejects malformed upsert input before the table is
// touched.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// PersistError means the table could not be written back. The in-memory
// table is still correct, only unsynced to disk.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist catalog %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
