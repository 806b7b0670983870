package Models

import (
	"gorm.io/gorm"
)

// PointsLedger is the running per-user aggregate of completion outcomes.
// One row per user, created lazily on the first completion; owned by the
// Scoring package and recomputable from completion_records at any time.
type PointsLedger struct {
	gorm.Model
	UserID            uint `json:"user_id" gorm:"uniqueIndex"`
	TotalPoints       int  `json:"total_points"`
	TasksCompleted    int  `json:"tasks_completed"`
	TasksNotCompleted int  `json:"tasks_not_completed"`
	TasksNoDemand     int  `json:"tasks_no_demand"`
}

func (PointsLedger) TableName() string {
	return "points_ledger"
}
