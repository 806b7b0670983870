package Models

import (
	"gorm.io/gorm"
)

// PendingGroup is one past day's unresolved task instances.
type PendingGroup struct {
	Date  string         `json:"date"`
	Tasks []TaskInstance `json:"tasks"`
}

// PendingInstances returns every task instance assigned to the user whose
// task date falls strictly before the given day and which has no completion
// record yet. Ordered by task date ascending, then id, so repeated reads of
// the same data come back in the same order.
func PendingInstances(db *gorm.DB, userID uint, before string) ([]TaskInstance, error) {
	resolved := db.Model(&CompletionRecord{}).
		Select("task_id").
		Where("user_id = ?", userID)

	var instances []TaskInstance
	err := db.Where("user_id = ? AND task_date <> '' AND task_date < ?", userID, before).
		Where("id NOT IN (?)", resolved).
		Order("task_date asc, id asc").
		Find(&instances).Error
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// GroupPendingByDate splits an ordered pending list into per-day groups,
// oldest day first.
func GroupPendingByDate(instances []TaskInstance) []PendingGroup {
	var groups []PendingGroup
	for _, instance := range instances {
		if len(groups) == 0 || groups[len(groups)-1].Date != instance.TaskDate {
			groups = append(groups, PendingGroup{Date: instance.TaskDate})
		}
		last := len(groups) - 1
		groups[last].Tasks = append(groups[last].Tasks, instance)
	}
	return groups
}

// HasPending reports whether the user is suspended from today's tasks and
// from the ranked leaderboard.
func HasPending(db *gorm.DB, userID uint, before string) (bool, error) {
	resolved := db.Model(&CompletionRecord{}).
		Select("task_id").
		Where("user_id = ?", userID)

	var count int64
	err := db.Model(&TaskInstance{}).
		Where("user_id = ? AND task_date <> '' AND task_date < ?", userID, before).
		Where("id NOT IN (?)", resolved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
