package Controllers

import (
	"fmt"
	"testing"

	"Cadence/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAlerts(t *testing.T, db *gorm.DB, n int) []Models.AdminAlert {
	t.Helper()
	var alerts []Models.AdminAlert
	for i := 0; i < n; i++ {
		alert := Models.AdminAlert{
			TaskID:    uint(i + 1),
			UserID:    1,
			Message:   fmt.Sprintf("Mandatory task #%d was not resolved", i+1),
			AlertDate: "2026-08-29",
		}
		require.NoError(t, db.Create(&alert).Error)
		alerts = append(alerts, alert)
	}
	return alerts
}

func TestAlertInboxReadFlow(t *testing.T) {
	db := newTestDB(t)
	admin := Models.User{Id: 9, Name: "Admin", Permission: 4}
	require.NoError(t, db.Create(&admin).Error)
	alerts := seedAlerts(t, db, 3)

	app := newTestApp(admin)
	controller := NewAlertController(db)
	app.Get("/api/alerts", controller.GetAlerts)
	app.Get("/api/alerts/unread-count", controller.GetUnreadCount)
	app.Put("/api/alerts/:id/read", controller.MarkRead)
	app.Put("/api/alerts/read-all", controller.MarkAllRead)

	resp, body := doJSON(t, app, "GET", "/api/alerts/unread-count", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(3), body["unread"])

	resp, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/alerts/%d/read", alerts[0].ID), nil)
	require.Equal(t, 200, resp.StatusCode)

	// Marking an already-read alert again is a no-op, not an error.
	resp, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/alerts/%d/read", alerts[0].ID), nil)
	require.Equal(t, 200, resp.StatusCode)

	// Unknown id is also treated as success.
	resp, _ = doJSON(t, app, "PUT", "/api/alerts/9999/read", nil)
	require.Equal(t, 200, resp.StatusCode)

	_, body = doJSON(t, app, "GET", "/api/alerts/unread-count", nil)
	assert.Equal(t, float64(2), body["unread"])

	resp, _ = doJSON(t, app, "PUT", "/api/alerts/read-all", nil)
	require.Equal(t, 200, resp.StatusCode)
	_, body = doJSON(t, app, "GET", "/api/alerts/unread-count", nil)
	assert.Equal(t, float64(0), body["unread"])
}

func TestAlertDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	admin := Models.User{Id: 9, Name: "Admin", Permission: 4}
	require.NoError(t, db.Create(&admin).Error)
	alerts := seedAlerts(t, db, 1)

	app := newTestApp(admin)
	controller := NewAlertController(db)
	app.Delete("/api/alerts/:id", controller.DeleteAlert)

	resp, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/api/alerts/%d", alerts[0].ID), nil)
	require.Equal(t, 200, resp.StatusCode)

	// Deleting the same alert twice must not error.
	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/alerts/%d", alerts[0].ID), nil)
	require.Equal(t, 200, resp.StatusCode)
}

func TestAlertListJoinsTaskAndAssignee(t *testing.T) {
	db := newTestDB(t)
	admin := Models.User{Id: 9, Name: "Admin", Email: "admin@example.com", Permission: 4}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&Models.User{Id: 1, Name: "Aya", Email: "aya@example.com"}).Error)

	task := Models.TaskInstance{UserID: 1, Title: "File the report", Criticality: Models.CriticalityHigh, TaskDate: "2026-08-29"}
	require.NoError(t, db.Create(&task).Error)
	require.NoError(t, db.Create(&Models.AdminAlert{
		TaskID: task.ID, UserID: 1, Message: "Mandatory task was not resolved", AlertDate: "2026-08-29",
	}).Error)

	app := newTestApp(admin)
	app.Get("/api/alerts", NewAlertController(db).GetAlerts)

	resp, err := app.Test(mustRequest(t, "GET", "/api/alerts"), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var views []AlertView
	decodeBody(t, resp, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "File the report", views[0].TaskTitle)
	assert.Equal(t, "Aya", views[0].AssigneeName)
	assert.False(t, views[0].IsRead)
}
