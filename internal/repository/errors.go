// Package repository defines the document store boundary for gigs and
// its implementations. The sentinel values below let higher layers such
// as the gig service distinguish between failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrNotPersisted is returned by Insert when the store accepted the call
// but did not hand back a usable identifier for the new record. The
// service translates this into the ActionFailed error kind.
var ErrNotPersisted = errors.New("gig not persisted")

// ErrUnknownField is returned when a FindQuery filters on a field the
// store does not index. Only the fields listed in filterableFields are
// accepted.
var ErrUnknownField = errors.New("unknown filter field")
