package Scoring

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"Cadence/Models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxFoldRetries bounds the automatic retry on write collisions before the
// error is surfaced to the caller.
const maxFoldRetries = 3

// ScoreFor maps a completion status to its signed point delta.
func ScoreFor(taskPoints int, status string) int {
	switch status {
	case Models.StatusCompleted:
		return taskPoints
	case Models.StatusNotCompleted:
		return -taskPoints
	default: // no_demand
		return 0
	}
}

// counterColumn returns the ledger counter a status contributes to.
func counterColumn(status string) string {
	switch status {
	case Models.StatusCompleted:
		return "tasks_completed"
	case Models.StatusNotCompleted:
		return "tasks_not_completed"
	default:
		return "tasks_no_demand"
	}
}

// ApplyCompletion upserts the completion record for (task, user, date) and
// folds the point delta into the user's ledger exactly once. On overwrite the
// prior contribution is reversed first, so re-submitting with a different
// status never double-counts. The record write and the ledger fold share a
// transaction; a failed fold rolls the record back with it.
func ApplyCompletion(db *gorm.DB, task Models.TaskInstance, userID uint, date, status string) (Models.CompletionRecord, error) {
	var record Models.CompletionRecord

	var lastErr error
	for attempt := 0; attempt < maxFoldRetries; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			var prior Models.CompletionRecord
			priorExists := true
			err := tx.Where("task_id = ? AND user_id = ? AND completion_date = ?",
				task.ID, userID, date).First(&prior).Error
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				priorExists = false
			}

			earned := ScoreFor(task.Points, status)
			record = Models.CompletionRecord{
				TaskID:         task.ID,
				UserID:         userID,
				CompletionDate: date,
				Status:         status,
				PointsEarned:   earned,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "task_id"}, {Name: "user_id"}, {Name: "completion_date"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"status", "points_earned", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return err
			}

			var ledger Models.PointsLedger
			if err := tx.Where(Models.PointsLedger{UserID: userID}).
				FirstOrCreate(&ledger).Error; err != nil {
				return err
			}

			delta := earned
			updates := map[string]interface{}{
				counterColumn(status): gorm.Expr(counterColumn(status)+" + ?", 1),
			}
			if priorExists {
				delta -= prior.PointsEarned
				priorColumn := counterColumn(prior.Status)
				if priorColumn == counterColumn(status) {
					delete(updates, priorColumn)
				} else {
					updates[priorColumn] = gorm.Expr(priorColumn+" - ?", 1)
				}
			}
			updates["total_points"] = gorm.Expr("total_points + ?", delta)

			return tx.Model(&Models.PointsLedger{}).
				Where("user_id = ?", userID).
				Updates(updates).Error
		})

		if lastErr == nil {
			return record, nil
		}
		if !isConflictError(lastErr) {
			return record, lastErr
		}
	}

	// Conflict retries exhausted; the ledger may be stale relative to the
	// records, so recompute it from source before giving up.
	if err := RebuildLedger(db, userID); err != nil {
		log.Printf("Ledger rebuild for user %d failed: %v", userID, err)
	}
	return record, fmt.Errorf("completion for task %d could not be recorded after %d attempts: %w",
		task.ID, maxFoldRetries, lastErr)
}

// isConflictError detects unique-constraint and lock collisions across the
// supported drivers.
func isConflictError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "Deadlock")
}

// RebuildLedger recomputes a user's ledger row from their completion records.
// The ledger is a materialized view of completion_records; this is the
// reconciliation path that guards against fold bugs and lost updates.
func RebuildLedger(db *gorm.DB, userID uint) error {
	var records []Models.CompletionRecord
	if err := db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return err
	}

	var ledger Models.PointsLedger
	if err := db.Where(Models.PointsLedger{UserID: userID}).
		FirstOrCreate(&ledger).Error; err != nil {
		return err
	}

	ledger.TotalPoints = 0
	ledger.TasksCompleted = 0
	ledger.TasksNotCompleted = 0
	ledger.TasksNoDemand = 0
	for _, record := range records {
		ledger.TotalPoints += record.PointsEarned
		switch record.Status {
		case Models.StatusCompleted:
			ledger.TasksCompleted++
		case Models.StatusNotCompleted:
			ledger.TasksNotCompleted++
		default:
			ledger.TasksNoDemand++
		}
	}

	return db.Model(&Models.PointsLedger{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_points":        ledger.TotalPoints,
			"tasks_completed":     ledger.TasksCompleted,
			"tasks_not_completed": ledger.TasksNotCompleted,
			"tasks_no_demand":     ledger.TasksNoDemand,
		}).Error
}

// RebuildAllLedgers reconciles every ledger row. Run nightly by the alert
// checker.
func RebuildAllLedgers(db *gorm.DB) error {
	var ledgers []Models.PointsLedger
	if err := db.Find(&ledgers).Error; err != nil {
		return err
	}
	for _, ledger := range ledgers {
		if err := RebuildLedger(db, ledger.UserID); err != nil {
			return err
		}
	}
	return nil
}
