package models

// Role is the closed set of user roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// UserStatus tracks a pending role upgrade. The zero value means no request
// was ever made.
type UserStatus string

const (
	StatusNone      UserStatus = ""
	StatusRequested UserStatus = "Requested"
	StatusVerified  UserStatus = "Verified"
)

// User is keyed by email. Timestamp is the creation time in Unix milliseconds.
type User struct {
	ID        string     `bson:"_id,omitempty"    json:"_id,omitempty"    gorm:"primaryKey;size:24"`
	Email     string     `bson:"email"            json:"email"            gorm:"uniqueIndex;size:255;not null"`
	Name      string     `bson:"name,omitempty"   json:"name,omitempty"   gorm:"size:255"`
	Image     string     `bson:"image,omitempty"  json:"image,omitempty"  gorm:"size:1024"`
	Role      Role       `bson:"role"             json:"role"             gorm:"size:20;not null"`
	Status    UserStatus `bson:"status,omitempty" json:"status,omitempty" gorm:"size:20"`
	Timestamp int64      `bson:"timestamp"        json:"timestamp"`
}
