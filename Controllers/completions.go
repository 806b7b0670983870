package Controllers

import (
	"fmt"
	"time"

	"Cadence/Models"
	"Cadence/Scoring"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CompletionController records daily task resolutions and feeds the scoring
// fold.
type CompletionController struct {
	DB *gorm.DB
}

func NewCompletionController(db *gorm.DB) *CompletionController {
	return &CompletionController{DB: db}
}

type CompletionInput struct {
	TaskID uint   `json:"task_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=completed not_completed no_demand"`
}

type SubmitCompletionsRequest struct {
	Date  string            `json:"date"` // defaults to today
	Tasks []CompletionInput `json:"tasks" validate:"required,min=1,dive"`
}

// TaskOutcome is the per-task result of a batch submission. The batch is not
// atomic across tasks; callers detect partial failure here.
type TaskOutcome struct {
	TaskID       uint   `json:"task_id"`
	Success      bool   `json:"success"`
	PointsEarned int    `json:"points_earned"`
	Error        string `json:"error,omitempty"`
}

// SubmitCompletions writes one completion record per submitted task for the
// target date. All validation happens before any write: an invalid pair
// rejects the whole batch with no partial effect. Re-submitting a pair
// overwrites the prior status without double-counting the ledger.
func (cc *CompletionController) SubmitCompletions(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req SubmitCompletionsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	today := time.Now().Format("2006-01-02")
	date := req.Date
	if date == "" {
		date = today
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}
	if date > today {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot record completions for a future date"})
	}

	tasks, errMsg := cc.resolveOwnedTasks(user, req.Tasks, date)
	if errMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}

	// The pending gate suspends today's interaction entirely; past-date
	// submissions are the regularization path and stay open.
	if date == today {
		hasPending, err := Models.HasPending(cc.DB, user.Id, today)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check pending days"})
		}
		if hasPending {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "You have unresolved tasks from previous days. Regularize them first.",
			})
		}
	}

	outcomes := make([]TaskOutcome, 0, len(req.Tasks))
	failures := 0
	for _, input := range req.Tasks {
		task := tasks[input.TaskID]
		record, err := Scoring.ApplyCompletion(cc.DB, task, user.Id, date, input.Status)
		if err != nil {
			failures++
			outcomes = append(outcomes, TaskOutcome{TaskID: input.TaskID, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, TaskOutcome{
			TaskID:       input.TaskID,
			Success:      true,
			PointsEarned: record.PointsEarned,
		})
	}

	status := fiber.StatusOK
	if failures == len(req.Tasks) {
		status = fiber.StatusInternalServerError
	}
	return ctx.Status(status).JSON(fiber.Map{
		"date":    date,
		"results": outcomes,
		"failed":  failures,
	})
}

// resolveOwnedTasks validates every submitted pair against the store before
// any write: the task must exist, belong to the caller and to the target
// date. Returns the tasks keyed by id, or a rejection message.
func (cc *CompletionController) resolveOwnedTasks(user Models.User, inputs []CompletionInput, date string) (map[uint]Models.TaskInstance, string) {
	tasks := make(map[uint]Models.TaskInstance, len(inputs))
	for _, input := range inputs {
		if _, dup := tasks[input.TaskID]; dup {
			return nil, fmt.Sprintf("Task %d appears more than once in the batch", input.TaskID)
		}
		var task Models.TaskInstance
		if err := cc.DB.First(&task, input.TaskID).Error; err != nil {
			return nil, fmt.Sprintf("Task %d not found", input.TaskID)
		}
		if task.UserID != user.Id {
			return nil, fmt.Sprintf("Task %d is not assigned to you", input.TaskID)
		}
		if task.TaskDate != "" && task.TaskDate != date {
			return nil, fmt.Sprintf("Task %d belongs to %s, not %s", input.TaskID, task.TaskDate, date)
		}
		tasks[input.TaskID] = task
	}
	return tasks, ""
}

// GetMyCompletions lists the acting user's completion records, newest day
// first. Read-only review; nothing here re-scores.
func (cc *CompletionController) GetMyCompletions(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	query := cc.DB.Where("user_id = ?", user.Id)
	if from := ctx.Query("from"); from != "" {
		query = query.Where("completion_date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("completion_date <= ?", to)
	}

	var records []Models.CompletionRecord
	if err := query.Order("completion_date desc, id asc").Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch completions"})
	}
	return ctx.JSON(records)
}
