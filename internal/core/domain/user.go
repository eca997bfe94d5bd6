package domain

import (
	"errors"
	"time"
)

// Role is the access level attached to a directory user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleModerator}

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidRole = errors.New("invalid role")

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is a directory record. IDs have the form user_<n> and are never reused
// within a process lifetime.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewUser carries the fields needed to insert a user. A zero CreatedAt means
// "now"; a zero Role defaults to RoleUser.
type NewUser struct {
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// UserPatch holds a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// Apply returns a copy of u with the patch applied and UpdatedAt set to now.
func (p UserPatch) Apply(u User, now time.Time) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = now
	return u
}

// UserStats is the per-role breakdown returned by the stats endpoint.
type UserStats struct {
	Total  int          `json:"total"`
	ByRole map[Role]int `json:"byRole"`
}
