package audit

import "strings"

// Actor identifies who performed a mutation. Every field is optional:
// unauthenticated operations commit with the zero Actor.
type Actor struct {
	UserID    *string
	UserName  *string
	IPAddress *string
	UserAgent *string
}

// NewActor builds an Actor, treating blank strings as absent.
func NewActor(userID, userName, ipAddress, userAgent string) Actor {
	return Actor{
		UserID:    optional(userID),
		UserName:  optional(userName),
		IPAddress: optional(ipAddress),
		UserAgent: optional(userAgent),
	}
}

func (a Actor) Anonymous() bool {
	return a.UserID == nil && a.UserName == nil
}

// Label is the value stamped into created_by / updated_by / deleted_by columns.
func (a Actor) Label() *string {
	if a.UserName != nil {
		return a.UserName
	}
	return a.UserID
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
