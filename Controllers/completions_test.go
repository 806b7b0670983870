package Controllers

import (
	"testing"
	"time"

	"Cadence/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createInstance(t *testing.T, db *gorm.DB, userID uint, criticality, date string) Models.TaskInstance {
	t.Helper()
	task := Models.TaskInstance{
		UserID:      userID,
		Title:       "Count the register",
		Criticality: criticality,
		IsMandatory: true,
		TaskDate:    date,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestSubmitCompletionsBatch(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1}
	require.NoError(t, db.Create(&user).Error)

	today := time.Now().Format("2006-01-02")
	first := createInstance(t, db, user.Id, Models.CriticalityHigh, today)
	second := createInstance(t, db, user.Id, Models.CriticalityLow, today)

	app := newTestApp(user)
	app.Post("/api/completions", NewCompletionController(db).SubmitCompletions)

	resp, body := doJSON(t, app, "POST", "/api/completions", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"task_id": first.ID, "status": "completed"},
			{"task_id": second.ID, "status": "no_demand"},
		},
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(0), body["failed"])

	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	firstResult := results[0].(map[string]interface{})
	assert.True(t, firstResult["success"].(bool))
	assert.Equal(t, float64(20), firstResult["points_earned"])

	var ledger Models.PointsLedger
	require.NoError(t, db.Where("user_id = ?", user.Id).First(&ledger).Error)
	assert.Equal(t, 20, ledger.TotalPoints)
	assert.Equal(t, 1, ledger.TasksCompleted)
	assert.Equal(t, 1, ledger.TasksNoDemand)
}

func TestSubmitRejectsForeignTaskBeforeAnyWrite(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1}
	require.NoError(t, db.Create(&user).Error)

	today := time.Now().Format("2006-01-02")
	mine := createInstance(t, db, user.Id, Models.CriticalityHigh, today)
	theirs := createInstance(t, db, 2, Models.CriticalityHigh, today)

	app := newTestApp(user)
	app.Post("/api/completions", NewCompletionController(db).SubmitCompletions)

	resp, _ := doJSON(t, app, "POST", "/api/completions", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"task_id": mine.ID, "status": "completed"},
			{"task_id": theirs.ID, "status": "completed"},
		},
	})
	require.Equal(t, 400, resp.StatusCode)

	// Validation failures reject the whole batch with no partial effect.
	var count int64
	require.NoError(t, db.Model(&Models.CompletionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubmitRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1}
	require.NoError(t, db.Create(&user).Error)
	task := createInstance(t, db, user.Id, Models.CriticalityLow, time.Now().Format("2006-01-02"))

	app := newTestApp(user)
	app.Post("/api/completions", NewCompletionController(db).SubmitCompletions)

	resp, _ := doJSON(t, app, "POST", "/api/completions", map[string]interface{}{
		"tasks": []map[string]interface{}{{"task_id": task.ID, "status": "done"}},
	})
	require.Equal(t, 400, resp.StatusCode)
}

func TestPendingGateBlocksTodaySubmission(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1}
	require.NoError(t, db.Create(&user).Error)

	today := time.Now()
	yesterday := today.AddDate(0, 0, -1).Format("2006-01-02")
	createInstance(t, db, user.Id, Models.CriticalityHigh, yesterday)
	todayTask := createInstance(t, db, user.Id, Models.CriticalityHigh, today.Format("2006-01-02"))

	app := newTestApp(user)
	app.Post("/api/completions", NewCompletionController(db).SubmitCompletions)

	resp, _ := doJSON(t, app, "POST", "/api/completions", map[string]interface{}{
		"tasks": []map[string]interface{}{{"task_id": todayTask.ID, "status": "completed"}},
	})
	assert.Equal(t, 409, resp.StatusCode)
}

func TestGetTodayTasksBlockedWhilePending(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1, SectorID: 1}
	require.NoError(t, db.Create(&user).Error)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	createInstance(t, db, user.Id, Models.CriticalityHigh, yesterday)
	createInstance(t, db, user.Id, Models.CriticalityLow, yesterday)

	app := newTestApp(user)
	app.Get("/api/tasks/today", NewTaskController(db).GetTodayTasks)

	resp, body := doJSON(t, app, "GET", "/api/tasks/today", nil)
	require.Equal(t, 409, resp.StatusCode)
	days := body["pending_days"].([]interface{})
	require.Len(t, days, 1)
	group := days[0].(map[string]interface{})
	assert.Equal(t, yesterday, group["date"])
	assert.Len(t, group["tasks"].([]interface{}), 2)
}

func TestGetTodayTasksClonesTemplates(t *testing.T) {
	db := newTestDB(t)
	user := Models.User{Id: 1, Name: "Nour", Permission: 1, SectorID: 3}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&Models.TaskTemplate{
		SectorID: 3, Title: "Morning checklist", Criticality: Models.CriticalityMedium, IsMandatory: true, Active: true,
	}).Error)

	app := newTestApp(user)
	app.Get("/api/tasks/today", NewTaskController(db).GetTodayTasks)

	resp, body := doJSON(t, app, "GET", "/api/tasks/today", nil)
	require.Equal(t, 200, resp.StatusCode)
	tasks := body["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]interface{})
	assert.Equal(t, "Morning checklist", task["title"])
	assert.Equal(t, float64(10), task["points"])
}
