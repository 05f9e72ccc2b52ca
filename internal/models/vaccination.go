package models

// Vaccination is a catalog entry: a vaccine and the age, in days from birth,
// at which it is due. DoseOrder is for display ordering only.
type Vaccination struct {
	BaseModel
	Name               string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description        string `gorm:"type:text" json:"description"`
	RecommendedAgeDays int    `gorm:"not null" json:"recommendedAgeDays"`
	DoseOrder          int    `gorm:"not null;default:1" json:"doseOrder"`
}
