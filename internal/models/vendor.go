package models

import "time"

// Application statuses. Transitions are one-way: pending goes to
// approved or rejected and never back. Rejected applications are
// deleted after the notification is sent, so the rejected status is
// only ever observed transiently.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Verification methods for a vendor application.
const (
	VerifyByGstin  = "gstin"
	VerifyByImages = "images"
)

// Vendor is a mess/canteen operator able to log in and publish menus.
// A vendor is born either through legacy self-registration (password)
// or through application approval (OTP-only, no password).
type Vendor struct {
	BaseModel
	Name             string     `json:"name"`
	Email            string     `gorm:"uniqueIndex" json:"email"`
	ContactNumber    string     `gorm:"uniqueIndex" json:"contact_number"`
	PasswordHash     string     `json:"-"`
	AuthMethod       string     `gorm:"default:otp" json:"auth_method"`
	MessName         string     `json:"mess_name"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Pincode          string     `json:"pincode"`
	GstinOrImages    string     `json:"gstin_or_images"`
	GstinNumber      string     `json:"gstin_number,omitempty"`
	RestaurantImages []string   `gorm:"serializer:json" json:"restaurant_images"`
	IsApproved       bool       `json:"is_approved"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
}

// VendorApplication is a pending request to open a mess on the
// platform. It is an independent aggregate: approval copies its fields
// into a fresh Vendor row rather than promoting the application, so
// the two records can diverge afterwards.
type VendorApplication struct {
	BaseModel
	Name             string   `json:"name"`
	ContactNumber    string   `json:"contact_number"`
	Email            string   `gorm:"uniqueIndex" json:"email"`
	MessName         string   `json:"mess_name"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	Pincode          string   `json:"pincode"`
	GstinOrImages    string   `json:"gstin_or_images"`
	GstinNumber      string   `json:"gstin_number,omitempty"`
	RestaurantImages []string `gorm:"serializer:json" json:"restaurant_images"`
	Status           string   `gorm:"default:pending" json:"status"`
}
