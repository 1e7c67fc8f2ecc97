package models

import "github.com/google/uuid"

// Review holds one student's rating of one vendor. The composite
// unique index enforces exactly one review per (vendor, student) pair;
// re-submission overwrites the existing row in place.
type Review struct {
	BaseModel
	VendorEmail string    `gorm:"uniqueIndex:idx_vendor_student;index" json:"vendor_email"`
	VendorName  string    `json:"vendor_name"`
	StudentID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_vendor_student" json:"student_id"`
	Student     *Student  `json:"student,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
}
