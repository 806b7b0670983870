package Models

import (
	"crypto/sha256"
	"fmt"

	"gorm.io/gorm"
)

// AdminAlert flags a mandatory task instance that was left unresolved past
// its day. Created by the nightly checker, mutated only through the admin
// inbox (read toggles and deletion).
type AdminAlert struct {
	gorm.Model
	TaskID    uint   `json:"task_id" gorm:"index"`
	UserID    uint   `json:"user_id" gorm:"index"`
	Message   string `json:"message"`
	AlertDate string `json:"alert_date" gorm:"size:10;index"` // YYYY-MM-DD
	IsRead    bool   `json:"is_read"`
	Hash      string `json:"-" gorm:"uniqueIndex;size:64"`
}

func (AdminAlert) TableName() string {
	return "admin_alerts"
}

// BeforeCreate generates the dedupe hash so the nightly checker can re-run
// over the same day without duplicating alerts.
func (a *AdminAlert) BeforeCreate(tx *gorm.DB) error {
	if a.Hash == "" {
		data := fmt.Sprintf("%d|%d|%s", a.TaskID, a.UserID, a.AlertDate)
		hash := sha256.Sum256([]byte(data))
		a.Hash = fmt.Sprintf("%x", hash)
	}
	return nil
}
