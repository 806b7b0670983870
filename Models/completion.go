package Models

import (
	"gorm.io/gorm"
)

const (
	StatusCompleted    = "completed"
	StatusNotCompleted = "not_completed"
	StatusNoDemand     = "no_demand"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusNotCompleted, StatusNoDemand:
		return true
	}
	return false
}

// CompletionRecord is the resolution of one task instance by its assignee on
// one calendar day. The (task, user, date) triple is unique; re-submission
// overwrites the existing row instead of duplicating it.
type CompletionRecord struct {
	gorm.Model
	TaskID         uint   `json:"task_id" gorm:"index:idx_completion_unique,unique"`
	UserID         uint   `json:"user_id" gorm:"index:idx_completion_unique,unique"`
	CompletionDate string `json:"completion_date" gorm:"size:10;index:idx_completion_unique,unique"` // YYYY-MM-DD
	Status         string `json:"status" gorm:"size:16"`
	PointsEarned   int    `json:"points_earned"`
}

func (CompletionRecord) TableName() string {
	return "completion_records"
}
