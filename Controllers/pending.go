package Controllers

import (
	"time"

	"Cadence/Models"
	"Cadence/Scoring"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PendingController serves the regularization flow for users locked out of
// today's tasks by an unresolved backlog.
type PendingController struct {
	DB *gorm.DB
}

func NewPendingController(db *gorm.DB) *PendingController {
	return &PendingController{DB: db}
}

// GetPendingTasks returns the acting user's unresolved past-day instances
// grouped by day, oldest first.
func (p *PendingController) GetPendingTasks(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	today := time.Now().Format("2006-01-02")

	pending, err := Models.PendingInstances(p.DB, user.Id, today)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch pending tasks"})
	}

	return ctx.JSON(fiber.Map{
		"is_pending":   len(pending) > 0,
		"pending_days": Models.GroupPendingByDate(pending),
	})
}

type RegularizeDay struct {
	Date  string            `json:"date" validate:"required"`
	Tasks []CompletionInput `json:"tasks" validate:"required,min=1,dive"`
}

type RegularizeRequest struct {
	Days []RegularizeDay `json:"days" validate:"required,min=1,dive"`
}

// DayOutcome reports one date group's result; the batch is per-group, not
// all-or-nothing.
type DayOutcome struct {
	Date    string        `json:"date"`
	Failed  int           `json:"failed"`
	Results []TaskOutcome `json:"results"`
}

// RegularizePending resolves the user's entire backlog. Every pending
// instance must be given a status before anything is written; each record is
// dated with its own task date, not today. Date groups are submitted
// sequentially and report success independently.
func (p *PendingController) RegularizePending(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	today := time.Now().Format("2006-01-02")

	var req RegularizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pending, err := Models.PendingInstances(p.DB, user.Id, today)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch pending tasks"})
	}
	if len(pending) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to regularize"})
	}

	// Index the submission and make sure every pending instance got a status.
	submitted := make(map[uint]CompletionInput)
	for _, day := range req.Days {
		for _, input := range day.Tasks {
			submitted[input.TaskID] = input
		}
	}
	pendingByID := make(map[uint]Models.TaskInstance, len(pending))
	for _, instance := range pending {
		if _, ok := submitted[instance.ID]; !ok {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "All pending tasks must be given a status before submitting",
			})
		}
		pendingByID[instance.ID] = instance
	}

	outcomes := make([]DayOutcome, 0, len(req.Days))
	for _, day := range req.Days {
		outcome := DayOutcome{Date: day.Date}
		for _, input := range day.Tasks {
			task, ok := pendingByID[input.TaskID]
			if !ok {
				outcome.Failed++
				outcome.Results = append(outcome.Results, TaskOutcome{
					TaskID: input.TaskID,
					Error:  "Task is not part of your pending backlog",
				})
				continue
			}
			if task.TaskDate != day.Date {
				outcome.Failed++
				outcome.Results = append(outcome.Results, TaskOutcome{
					TaskID: input.TaskID,
					Error:  "Task is grouped under the wrong date",
				})
				continue
			}

			// The record is dated with the task's own day.
			record, err := Scoring.ApplyCompletion(p.DB, task, user.Id, task.TaskDate, input.Status)
			if err != nil {
				outcome.Failed++
				outcome.Results = append(outcome.Results, TaskOutcome{TaskID: input.TaskID, Error: err.Error()})
				continue
			}
			outcome.Results = append(outcome.Results, TaskOutcome{
				TaskID:       input.TaskID,
				Success:      true,
				PointsEarned: record.PointsEarned,
			})
		}
		outcomes = append(outcomes, outcome)
	}

	stillPending, err := Models.HasPending(p.DB, user.Id, today)
	if err != nil {
		stillPending = true
	}

	return ctx.JSON(fiber.Map{
		"days":          outcomes,
		"still_pending": stillPending,
	})
}
