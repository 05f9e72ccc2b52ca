package models

import "time"

// ReminderStage identifies one of the two reminders tied to a dose's date
type ReminderStage string

const (
	StageDayBefore ReminderStage = "day_before"
	StageOnDay     ReminderStage = "on_day"
)

// ReminderStatus is the outcome of a send attempt
type ReminderStatus string

const (
	ReminderSent   ReminderStatus = "sent"
	ReminderFailed ReminderStatus = "failed"
)

// ReminderLog records every attempt to deliver a reminder, successful or not.
type ReminderLog struct {
	BaseModel
	DoseID            string         `gorm:"size:36;not null;index" json:"doseId"`
	Stage             ReminderStage  `gorm:"size:20;not null" json:"stage"`
	Destination       string         `gorm:"size:32" json:"destination"`
	Body              string         `gorm:"type:text" json:"body"`
	Status            ReminderStatus `gorm:"size:10;not null;index" json:"status"`
	Error             string         `gorm:"type:text" json:"error,omitempty"`
	ProviderMessageID string         `gorm:"size:64" json:"providerMessageId,omitempty"`
	AttemptedAt       time.Time      `json:"attemptedAt"`

	Dose *ScheduledDose `gorm:"foreignKey:DoseID;constraint:OnDelete:CASCADE" json:"-"`
}
