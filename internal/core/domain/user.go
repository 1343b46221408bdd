package domain

import "time"

// Role names are flat tags attached to users.
const (
	RoleUser       = "USER_ROLE"
	RoleAdmin      = "ADMIN_ROLE"
	RoleSuperAdmin = "SUPER_ADMIN_ROLE"
)

// Permission tags gate the shipping-stage transitions employees may perform.
const (
	PermissionDelivery  = "DELIVERY"
	PermissionShipping  = "SHIPPING"
	PermissionReceiving = "RECEIVING"
	PermissionComplete  = "COMPLETE"
)

// User models a registered account. State false marks a soft-deleted account.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Surname      string    `json:"surname" bson:"surname"`
	PhoneNumber  string    `json:"phoneNumber" bson:"phone_number"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Roles        []string  `json:"roles" bson:"roles"`
	State        bool      `json:"state" bson:"state"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// UserSummary is the reduced projection embedded in dashboard listings.
type UserSummary struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Surname     string `json:"surname" bson:"surname"`
	PhoneNumber string `json:"phoneNumber" bson:"phone_number"`
	Username    string `json:"username" bson:"username"`
}

// Identity is the authenticated caller as seen by the core: a subject id plus
// a flat role set. Role membership is a set lookup, not an array scan.
type Identity struct {
	SubjectID string
	roles     map[string]struct{}
}

// NewIdentity builds an Identity from a subject id and its role names.
func NewIdentity(subjectID string, roles []string) Identity {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Identity{SubjectID: subjectID, roles: set}
}

// HasRole reports whether the identity carries the named role.
func (i Identity) HasRole(name string) bool {
	_, ok := i.roles[name]
	return ok
}

// Roles returns the role names carried by the identity.
func (i Identity) Roles() []string {
	out := make([]string, 0, len(i.roles))
	for r := range i.roles {
		out = append(out, r)
	}
	return out
}

// Employee joins a user to a branch office with the permission tags that
// authorize shipping-stage transitions.
type Employee struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	User        string    `json:"user" bson:"user"`
	Local       string    `json:"local" bson:"local"`
	Permissions []string  `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasPermission reports whether the employee carries the named permission tag.
func (e *Employee) HasPermission(name string) bool {
	for _, p := range e.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// Local is a branch office where staff process packages.
type Local struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Country     string    `json:"country" bson:"country"`
	City        string    `json:"city" bson:"city"`
	Direction   string    `json:"direction" bson:"direction"`
	PhoneNumber string    `json:"phoneNumber" bson:"phone_number"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// Permission is a name-only tag entity.
type Permission struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Role is a name-only tag entity.
type Role struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
