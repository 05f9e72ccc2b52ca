package models

import (
	"time"

	"gorm.io/datatypes"

	"sasamom-server/internal/utils"
)

// Gender of a child
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Child belongs to exactly one mother; deleting the mother deletes the child.
// DateOfBirth may be entered after registration, and scheduling waits for it.
type Child struct {
	BaseModel
	MotherID    string          `gorm:"size:36;not null;index" json:"motherId"`
	Name        string          `gorm:"size:255" json:"name"`
	DateOfBirth *datatypes.Date `json:"dateOfBirth,omitempty"`
	Gender      Gender          `gorm:"size:10;default:'Female'" json:"gender"`

	Mother Mother `gorm:"foreignKey:MotherID;constraint:OnDelete:CASCADE" json:"-"`
}

// DisplayName is the name used in messages and reports.
func (c *Child) DisplayName() string {
	if c.Name == "" {
		return "your child"
	}
	return c.Name
}

// BirthDate returns the calendar date of birth, or false when unknown.
func (c *Child) BirthDate() (time.Time, bool) {
	if c.DateOfBirth == nil {
		return time.Time{}, false
	}
	return utils.DateOf(time.Time(*c.DateOfBirth)), true
}

// NewDate wraps a calendar date for a DATE column.
func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(utils.DateOf(t))
}
