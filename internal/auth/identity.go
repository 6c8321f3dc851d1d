package auth

import (
	"fmt"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/store"
)

// Role is what an account may do.
type Role string

const (
	RoleKid       Role = api.RoleKid
	RoleCaregiver Role = api.RoleCaregiver
)

// Segment is a kid's age band. The zero value means unknown.
type Segment int

const (
	SegmentYoung Segment = api.SegmentYoung
	SegmentOld   Segment = api.SegmentOld
)

// Label returns the age range shown to users and sent to the feedback
// service.
func (s Segment) Label() string {
	switch s {
	case SegmentYoung:
		return "7-9"
	case SegmentOld:
		return "10-12"
	}
	return ""
}

// Code is the wire value.
func (s Segment) Code() int { return int(s) }

func (s Segment) Valid() bool {
	return s == SegmentYoung || s == SegmentOld
}

func (s Segment) String() string {
	if l := s.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("segment(%d)", int(s))
}

// Identity is an authenticated user.
type Identity struct {
	ID      int
	Name    string
	Email   string
	Role    Role
	Segment Segment
}

func (i Identity) IsCaregiver() bool { return i.Role == RoleCaregiver }
func (i Identity) IsKid() bool       { return i.Role == RoleKid }

// ChildIdentity converts a dashboard child entry into an identity.
func ChildIdentity(c api.Child) Identity {
	return Identity{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Role:    RoleKid,
		Segment: Segment(c.Segment),
	}
}

func toRecord(i *Identity) *store.IdentityRecord {
	if i == nil {
		return nil
	}
	return &store.IdentityRecord{
		UserID:  i.ID,
		Name:    i.Name,
		Email:   i.Email,
		Role:    string(i.Role),
		Segment: int(i.Segment),
	}
}

func fromRecord(r *store.IdentityRecord) *Identity {
	if r == nil {
		return nil
	}
	return &Identity{
		ID:      r.UserID,
		Name:    r.Name,
		Email:   r.Email,
		Role:    Role(r.Role),
		Segment: Segment(r.Segment),
	}
}
