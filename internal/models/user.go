package models

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a storefront account. Password is empty for accounts provisioned
// through Google OAuth only; signing in with a password requires a non-empty
// hash. Email uniqueness is enforced by the database so the check-then-insert
// race between concurrent signups surfaces as a constraint violation.
type User struct {
	BaseModel

	FullName string `gorm:"not null" json:"fullname"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Mobile   string `gorm:"index" json:"mobile"`
	Password string `json:"-"`

	GoogleID     string `gorm:"index" json:"-"`
	ReferralCode string `json:"referral_code,omitempty"`

	IsBlocked bool   `gorm:"default:false" json:"is_blocked"`
	Role      string `gorm:"default:user" json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.Password != ""
}
