package models

import (
	"time"

	"gorm.io/datatypes"

	"sasamom-server/internal/utils"
)

// MotherStatus is the care stage derived from a mother's records
type MotherStatus string

const (
	StatusChildBorn     MotherStatus = "Child Born (Post-Natal Care)"
	StatusPregnant      MotherStatus = "Pregnant (Antenatal Care)"
	StatusDueDatePassed MotherStatus = "Due Date Passed / Post-Natal Checkup"
	StatusPending       MotherStatus = "New Registration / Status Pending"
)

// Mother is a registered mother. Consent gates every automated message
// about her or her children.
type Mother struct {
	BaseModel
	Name     string `gorm:"size:255;not null" json:"name"`
	Phone    string `gorm:"size:20;not null" json:"phone"`
	Language string `gorm:"size:50;default:'en'" json:"language"`
	Consent  bool   `gorm:"not null;default:false" json:"consent"`
	Hospital string `gorm:"size:255" json:"hospital"`
}

// Pregnancy is an antenatal record for a mother
type Pregnancy struct {
	BaseModel
	MotherID  string          `gorm:"size:36;not null;index" json:"motherId"`
	DueDate   *datatypes.Date `json:"dueDate,omitempty"`
	NextVisit *datatypes.Date `json:"nextVisit,omitempty"`

	Mother *Mother `gorm:"foreignKey:MotherID;constraint:OnDelete:CASCADE" json:"-"`
}

// CurrentStatus derives the mother's care stage. A born child wins over any
// pregnancy; otherwise the most recent pregnancy's due date decides.
func (m *Mother) CurrentStatus(hasChildren bool, latest *Pregnancy, today time.Time) MotherStatus {
	if hasChildren {
		return StatusChildBorn
	}
	if latest != nil && latest.DueDate != nil {
		due := utils.DateOf(time.Time(*latest.DueDate))
		if !due.Before(utils.DateOf(today)) {
			return StatusPregnant
		}
		return StatusDueDatePassed
	}
	return StatusPending
}
