package models

// Meal describes a single serving window of the day.
type Meal struct {
	Items     []string `json:"items"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// Menu is a vendor's published menu for a day. Vendors publish a new
// row on every update; the latest row by creation time is treated as
// the current menu.
type Menu struct {
	BaseModel
	VendorEmail string `gorm:"index" json:"vendor_email"`
	VendorName  string `json:"vendor_name"`
	Date        string `json:"date"`
	Day         string `json:"day"`
	Breakfast   Meal   `gorm:"serializer:json" json:"breakfast"`
	Lunch       Meal   `gorm:"serializer:json" json:"lunch"`
	Dinner      Meal   `gorm:"serializer:json" json:"dinner"`
}
