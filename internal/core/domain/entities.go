package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser      Role = "USER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// Identity is the resolved caller of a core operation.
// The core never authenticates; collaborators hand it an Identity.
type Identity struct {
	UserID   uint
	Username string
	Role     Role
}

// IsStaff returns true for librarians and admins
func (i Identity) IsStaff() bool {
	return i.Role == RoleLibrarian || i.Role == RoleAdmin
}

// Clock abstracts "now" so sweeps and fines can be tested deterministically
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}
