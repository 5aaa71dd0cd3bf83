package domain

import "time"

// Session is the audit-trail row written once per successful login. It is not
// a capability store: token validity never consults it, and no update, read or
// revocation path exists in this service.
type Session struct {
	ID            string
	OwnerID       string
	Role          Role
	Token         string
	DeviceInfo    string
	NetworkOrigin string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
