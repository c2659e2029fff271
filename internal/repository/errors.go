// Package repository implements tenant-scoped data access over database/sql.
// Sentinel errors defined here let handlers and services distinguish failure
// scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist or is not visible in
// the caller's tenant scope. Handlers translate it into HTTP 404; the auth
// service folds it into its uniform credential error.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user or customer whose email
// already exists within the relevant scope.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an operation cannot proceed because of
// existing dependent state, e.g. invoicing a repair order that already has
// an invoice, or stock adjustments that would drive quantity negative.
var ErrConflict = errors.New("conflict")
