package CronJobs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"Cadence/Models"
	"Cadence/Scoring"
	"Cadence/email"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AlertChecker scans the previous day for mandatory task instances that were
// never resolved and turns each one into an admin alert. It also reconciles
// the point ledgers against the completion records while it is at it.
type AlertChecker struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	runImmediately bool
	jobID          cron.EntryID
}

// NewAlertChecker creates a checker bound to the given database.
func NewAlertChecker(db *gorm.DB, runImmediately bool) *AlertChecker {
	return &AlertChecker{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		runImmediately: runImmediately,
	}
}

// Start schedules the nightly check. ALERT_CRON overrides the default
// schedule of 00:05 every day.
func (a *AlertChecker) Start() error {
	schedule := os.Getenv("ALERT_CRON")
	if schedule == "" {
		schedule = "0 5 0 * * *"
	}

	var err error
	a.jobID, err = a.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled unresolved-task check")
		a.runAlertCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	a.cronScheduler.Start()
	log.Printf("Alert checker started with schedule %q", schedule)

	if a.runImmediately {
		log.Println("Running initial unresolved-task check")
		a.runAlertCheck()
	}

	return nil
}

// Stop terminates the checker.
func (a *AlertChecker) Stop() {
	if a.cronScheduler != nil {
		a.cronScheduler.Stop()
		log.Println("Alert checker stopped")
	}
}

// UpdateSchedule changes the schedule of the checker.
// Format: "0 5 0 * * *" = at 00:05:00 every day
func (a *AlertChecker) UpdateSchedule(schedule string) error {
	a.cronScheduler.Remove(a.jobID)

	var err error
	a.jobID, err = a.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled unresolved-task check")
		a.runAlertCheck()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	log.Printf("Alert check schedule updated to: %s\n", schedule)
	return nil
}

// RunManualCheck executes a check outside the schedule.
func (a *AlertChecker) RunManualCheck() {
	log.Println("Running manual unresolved-task check")
	a.runAlertCheck()
}

func (a *AlertChecker) runAlertCheck() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	created, err := GenerateAlertsForDay(a.db, yesterday)
	if err != nil {
		log.Printf("Error in unresolved-task check: %v\n", err)
		return
	}
	if created == 0 {
		log.Printf("No unresolved mandatory tasks for %s", yesterday)
	} else {
		log.Printf("Generated %d alerts for %s", created, yesterday)
	}

	if err := Scoring.RebuildAllLedgers(a.db); err != nil {
		log.Printf("Ledger reconciliation failed: %v\n", err)
	}

	if created > 0 {
		a.sendDigest(yesterday, created)
	}
}

// GenerateAlertsForDay writes one alert per mandatory instance of the given
// day that has no completion record. Re-running over the same day is safe;
// the alert dedupe hash swallows duplicates.
func GenerateAlertsForDay(db *gorm.DB, day string) (int, error) {
	resolved := db.Model(&Models.CompletionRecord{}).
		Select("task_id").
		Where("completion_date = ?", day)

	var unresolved []Models.TaskInstance
	err := db.Where("task_date = ? AND is_mandatory = ?", day, true).
		Where("id NOT IN (?)", resolved).
		Find(&unresolved).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for _, task := range unresolved {
		alert := Models.AdminAlert{
			TaskID:    task.ID,
			UserID:    task.UserID,
			Message:   fmt.Sprintf("Mandatory task %q was not resolved on %s", task.Title, day),
			AlertDate: day,
		}
		if err := db.Create(&alert).Error; err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") ||
				strings.Contains(err.Error(), "Duplicate entry") {
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}

// sendDigest mails the admin a one-line summary of the night's alerts, if
// SMTP is configured.
func (a *AlertChecker) sendDigest(day string, created int) {
	config, enabled := Models.EmailConfigFromEnv()
	if !enabled {
		return
	}
	to := os.Getenv("ADMIN_ALERT_EMAIL")
	if to == "" {
		return
	}

	message := Models.EmailMessage{
		To:      []string{to},
		Subject: fmt.Sprintf("Unresolved mandatory tasks for %s", day),
		Body:    fmt.Sprintf("%d mandatory task(s) were left unresolved on %s. Review them in the alert inbox.", created, day),
	}
	if err := email.SendEmail(config, message); err != nil {
		log.Printf("Error sending alert digest: %v\n", err)
	}
}
