package models

// Authentication methods an account can carry. Legacy accounts keep a
// bcrypt password hash; accounts provisioned through the OTP flow never
// hold one.
const (
	AuthMethodPassword = "password"
	AuthMethodOtp      = "otp"
)

// Student represents a campus customer. Email is the stable identity;
// name and contact number stay empty until the profile is completed.
// ContactNumber is a pointer so that students without one do not
// collide on the unique index.
type Student struct {
	BaseModel
	Name          string  `json:"name"`
	Email         string  `gorm:"uniqueIndex" json:"email"`
	ContactNumber *string `gorm:"uniqueIndex" json:"contact_number,omitempty"`
	PasswordHash  string  `json:"-"`
	AuthMethod    string  `gorm:"default:otp" json:"auth_method"`
}
