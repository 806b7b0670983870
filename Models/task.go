package Models

import (
	"gorm.io/gorm"
)

// TaskTemplate is the recurring definition a daily task instance is cloned from.
type TaskTemplate struct {
	gorm.Model
	SectorID    uint   `json:"sector_id" gorm:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Criticality string `json:"criticality" gorm:"size:16"`
	IsMandatory bool   `json:"is_mandatory"`
	Active      bool   `json:"active" gorm:"default:true"`
}

// TaskInstance is one day's actionable copy of a task, assigned to one user.
// Points are fixed at creation from the criticality table and never change,
// even if the table is edited later.
type TaskInstance struct {
	gorm.Model
	TemplateID  *uint  `json:"template_id" gorm:"index"` // nil for ad-hoc tasks
	UserID      uint   `json:"user_id" gorm:"index"`
	SectorID    uint   `json:"sector_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Criticality string `json:"criticality" gorm:"size:16"`
	IsMandatory bool   `json:"is_mandatory"`
	Points      int    `json:"points"`
	TaskDate    string `json:"task_date" gorm:"size:10;index"` // YYYY-MM-DD
}

func (TaskInstance) TableName() string {
	return "task_instances"
}

// BeforeCreate freezes the point value from the criticality table.
func (t *TaskInstance) BeforeCreate(tx *gorm.DB) error {
	if t.Points == 0 && t.Criticality != "" {
		t.Points = PointsForCriticality(tx, t.Criticality)
	}
	return nil
}

// SetupTaskInstanceIndexes guards clone idempotency: one instance per
// template per user per day.
func SetupTaskInstanceIndexes(db *gorm.DB) error {
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_template_user_date ON task_instances (template_id, user_id, task_date) WHERE template_id IS NOT NULL AND deleted_at IS NULL").Error
}

// CloneTasksForDay materializes the user's task instances for targetDate from
// the active templates of their sector. Safe to call repeatedly; templates
// that already have an instance for that day are skipped.
func CloneTasksForDay(db *gorm.DB, user User, targetDate string) ([]TaskInstance, error) {
	var templates []TaskTemplate
	if err := db.Where("sector_id = ? AND active = ?", user.SectorID, true).
		Find(&templates).Error; err != nil {
		return nil, err
	}

	for _, template := range templates {
		templateID := template.ID
		var existing TaskInstance
		err := db.Where("template_id = ? AND user_id = ? AND task_date = ?",
			templateID, user.Id, targetDate).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		instance := TaskInstance{
			TemplateID:  &templateID,
			UserID:      user.Id,
			SectorID:    template.SectorID,
			Title:       template.Title,
			Description: template.Description,
			Criticality: template.Criticality,
			IsMandatory: template.IsMandatory,
			TaskDate:    targetDate,
		}
		if err := db.Create(&instance).Error; err != nil {
			return nil, err
		}
	}

	var instances []TaskInstance
	if err := db.Where("user_id = ? AND task_date = ?", user.Id, targetDate).
		Order("id asc").Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}
