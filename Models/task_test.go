package Models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&User{}, &Sector{}, &CriticalityPoint{},
		&TaskTemplate{}, &TaskInstance{},
		&CompletionRecord{}, &PointsLedger{}, &AdminAlert{},
	))
	require.NoError(t, SetupTaskInstanceIndexes(db))
	require.NoError(t, SeedCriticalityPoints(db))
	return db
}

func TestPointsFrozenAtCreation(t *testing.T) {
	db := newTestDB(t)

	task := TaskInstance{UserID: 1, Title: "Audit inventory", Criticality: CriticalityHigh, TaskDate: "2026-08-29"}
	require.NoError(t, db.Create(&task).Error)
	assert.Equal(t, 20, task.Points)

	// Editing the table must not rescore the existing instance.
	require.NoError(t, db.Model(&CriticalityPoint{}).
		Where("criticality = ?", CriticalityHigh).
		Update("points", 50).Error)

	var reloaded TaskInstance
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	assert.Equal(t, 20, reloaded.Points)

	later := TaskInstance{UserID: 1, Title: "Audit inventory", Criticality: CriticalityHigh, TaskDate: "2026-08-30"}
	require.NoError(t, db.Create(&later).Error)
	assert.Equal(t, 50, later.Points)
}

func TestCloneTasksForDayIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := User{Id: 1, Name: "Dina", SectorID: 2}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&TaskTemplate{
		SectorID: 2, Title: "Open the till", Criticality: CriticalityMedium, IsMandatory: true, Active: true,
	}).Error)
	require.NoError(t, db.Create(&TaskTemplate{
		SectorID: 2, Title: "Old duty", Criticality: CriticalityLow, Active: false,
	}).Error)
	require.NoError(t, db.Create(&TaskTemplate{
		SectorID: 9, Title: "Other sector", Criticality: CriticalityLow, Active: true,
	}).Error)

	first, err := CloneTasksForDay(db, user, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Open the till", first[0].Title)
	assert.Equal(t, 10, first[0].Points)

	second, err := CloneTasksForDay(db, user, "2026-08-30")
	require.NoError(t, err)
	assert.Len(t, second, 1, "re-cloning the same day must not duplicate instances")
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestPendingInstancesGroupsPastDaysOnly(t *testing.T) {
	db := newTestDB(t)
	today := "2026-08-30"

	openDay := func(date string, n int) []TaskInstance {
		var out []TaskInstance
		for i := 0; i < n; i++ {
			task := TaskInstance{UserID: 1, Title: fmt.Sprintf("Task %s #%d", date, i), Criticality: CriticalityLow, TaskDate: date}
			require.NoError(t, db.Create(&task).Error)
			out = append(out, task)
		}
		return out
	}

	dayBefore := openDay("2026-08-28", 1)
	yesterday := openDay("2026-08-29", 2)
	openDay(today, 3)

	pending, err := PendingInstances(db, 1, today)
	require.NoError(t, err)
	require.Len(t, pending, 3, "today's instances are not pending")

	groups := GroupPendingByDate(pending)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-08-28", groups[0].Date)
	assert.Len(t, groups[0].Tasks, 1)
	assert.Equal(t, "2026-08-29", groups[1].Date)
	assert.Len(t, groups[1].Tasks, 2)

	// Resolving an instance removes it from the pending set.
	require.NoError(t, db.Create(&CompletionRecord{
		TaskID: dayBefore[0].ID, UserID: 1, CompletionDate: "2026-08-28", Status: StatusCompleted,
	}).Error)
	pending, err = PendingInstances(db, 1, today)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, yesterday[0].ID, pending[0].ID)

	has, err := HasPending(db, 1, today)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPendingOrderIsStable(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, db.Create(&TaskInstance{
			UserID: 1, Title: fmt.Sprintf("Task %d", i), Criticality: CriticalityLow, TaskDate: "2026-08-29",
		}).Error)
	}

	first, err := PendingInstances(db, 1, "2026-08-30")
	require.NoError(t, err)
	second, err := PendingInstances(db, 1, "2026-08-30")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
