package domain

import "fmt"

// ValidationError reports empty or malformed operator input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a key or position that does not resolve against the
// current table.
type NotFoundError struct {
	Entity EntityType
	Key    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// ConflictError reports a write rejected because the backing store is held by
// another writer, or a stale snapshot that no longer matches the live table.
type ConflictError struct {
	Entity EntityType
	Reason string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// SchemaError reports bulk input carrying no recognized columns.
type SchemaError struct {
	Reason string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("schema: %s", e.Reason)
}

// PersistenceError wraps a network or file I/O failure on read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }
