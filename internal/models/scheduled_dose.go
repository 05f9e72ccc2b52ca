package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sasamom-server/internal/utils"
)

// ErrCompletionMismatch is returned when completed and completed_at disagree.
var ErrCompletionMismatch = errors.New("completed and completion date must be set together")

// ScheduledDose is one planned administration of a vaccine for one child.
//
// ScheduledDate is written once at creation. The reminder flags only ever go
// from false to true. ActiveKey holds "<child>:<vaccination>" while the dose
// is incomplete and NULL afterwards; its unique index allows at most one
// active dose per pair.
type ScheduledDose struct {
	BaseModel
	ChildID               string         `gorm:"size:36;not null;index" json:"childId"`
	VaccinationID         string         `gorm:"size:36;not null;index" json:"vaccinationId"`
	ScheduledDate         datatypes.Date `gorm:"not null;index" json:"scheduledDate"`
	Completed             bool           `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt           *time.Time     `json:"completedAt,omitempty"`
	ReminderDayBeforeSent bool           `gorm:"not null;default:false" json:"reminderDayBeforeSent"`
	ReminderOnDaySent     bool           `gorm:"not null;default:false" json:"reminderOnDaySent"`
	ActiveKey             *string        `gorm:"size:80;uniqueIndex" json:"-"`

	// Relations
	Child       Child       `gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE" json:"-"`
	Vaccination Vaccination `gorm:"foreignKey:VaccinationID;constraint:OnDelete:RESTRICT" json:"vaccination"`
}

// ActiveKeyFor builds the uniqueness key for an incomplete dose.
func ActiveKeyFor(childID, vaccinationID string) string {
	return childID + ":" + vaccinationID
}

// DueDate returns the scheduled calendar date.
func (d *ScheduledDose) DueDate() time.Time {
	return utils.DateOf(time.Time(d.ScheduledDate))
}

// BeforeSave keeps completed and completed_at consistent.
func (d *ScheduledDose) BeforeSave(tx *gorm.DB) error {
	if d.Completed != (d.CompletedAt != nil) {
		return ErrCompletionMismatch
	}
	return nil
}

// BeforeCreate assigns the id and the active key.
func (d *ScheduledDose) BeforeCreate(tx *gorm.DB) error {
	if err := d.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if !d.Completed && d.ActiveKey == nil {
		key := ActiveKeyFor(d.ChildID, d.VaccinationID)
		d.ActiveKey = &key
	}
	return nil
}
