package Controllers

import (
	"math"
	"sort"
	"time"

	"Cadence/Models"
	"Cadence/Scoring"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LeaderboardController builds the competitive ranking from the point
// ledgers.
type LeaderboardController struct {
	DB *gorm.DB
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{DB: db}
}

type LeaderboardEntry struct {
	UserID            uint   `json:"user_id"`
	Name              string `json:"name"`
	TotalPoints       int    `json:"total_points"`
	TasksCompleted    int    `json:"tasks_completed"`
	TasksNotCompleted int    `json:"tasks_not_completed"`
	TasksNoDemand     int    `json:"tasks_no_demand"`
	CompletionRate    int    `json:"completion_rate"`
	IsPending         bool   `json:"is_pending"`
	Rank              int    `json:"rank,omitempty"`
}

// GetLeaderboard returns every scored user: active entries ranked 1..n by
// total points descending (equal totals order by ascending user id), then
// pending users unranked at the bottom regardless of their totals.
func (l *LeaderboardController) GetLeaderboard(ctx *fiber.Ctx) error {
	var ledgers []Models.PointsLedger
	if err := l.DB.Find(&ledgers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch ledgers"})
	}

	var users []Models.User
	if err := l.DB.Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	nameByID := make(map[uint]string, len(users))
	for _, user := range users {
		nameByID[user.Id] = user.Name
	}

	today := time.Now().Format("2006-01-02")
	var active, pending []LeaderboardEntry
	for _, ledger := range ledgers {
		isPending, err := Models.HasPending(l.DB, ledger.UserID, today)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check pending state"})
		}

		entry := LeaderboardEntry{
			UserID:            ledger.UserID,
			Name:              nameByID[ledger.UserID],
			TotalPoints:       ledger.TotalPoints,
			TasksCompleted:    ledger.TasksCompleted,
			TasksNotCompleted: ledger.TasksNotCompleted,
			TasksNoDemand:     ledger.TasksNoDemand,
			CompletionRate:    completionRate(ledger.TasksCompleted, ledger.TasksNotCompleted),
			IsPending:         isPending,
		}
		if isPending {
			pending = append(pending, entry)
		} else {
			active = append(active, entry)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].TotalPoints != active[j].TotalPoints {
			return active[i].TotalPoints > active[j].TotalPoints
		}
		return active[i].UserID < active[j].UserID
	})
	for i := range active {
		active[i].Rank = i + 1
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].UserID < pending[j].UserID
	})

	return ctx.JSON(fiber.Map{
		"entries": append(active, pending...),
	})
}

// completionRate is the percentage of completed over acted-on tasks, rounded
// to the nearest integer. No-demand days don't count against anyone.
func completionRate(completed, notCompleted int) int {
	denominator := completed + notCompleted
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(denominator) * 100))
}

// Reconcile recomputes every ledger row from the completion records. Admin
// escape hatch for the materialized counters.
func (l *LeaderboardController) Reconcile(ctx *fiber.Ctx) error {
	if err := Scoring.RebuildAllLedgers(l.DB); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rebuild ledgers"})
	}
	return ctx.JSON(fiber.Map{"message": "Ledgers reconciled successfully"})
}
