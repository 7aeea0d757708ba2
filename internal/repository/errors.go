// Package repository implements the MySQL-backed stores.  Sentinel errors
// here let the service layer distinguish missing rows and unique-key
// collisions from store failures without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user with the same email is already
// registered.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateCode is returned when a generated event code collides with
// an existing one.
var ErrDuplicateCode = errors.New("duplicate event code")

// ErrMissingReference is returned when an insert points at a parent row
// that does not exist.
var ErrMissingReference = errors.New("referenced row does not exist")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as an event row still referenced
// by bookings that could not be removed.
var ErrConflict = errors.New("conflict")
