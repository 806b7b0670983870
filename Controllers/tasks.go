package Controllers

import (
	"strconv"
	"time"

	"Cadence/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TaskController handles the task catalog: daily instances and the templates
// they are cloned from.
type TaskController struct {
	DB *gorm.DB
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

// GetTodayTasks materializes and returns the acting user's instances for the
// current day. Hard precondition: a user with unresolved past days gets a 409
// with the backlog instead of today's list.
func (t *TaskController) GetTodayTasks(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	today := time.Now().Format("2006-01-02")

	pending, err := Models.PendingInstances(t.DB, user.Id, today)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check pending days"})
	}
	if len(pending) > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":        "You have unresolved tasks from previous days. Regularize them before accessing today's tasks.",
			"pending_days": Models.GroupPendingByDate(pending),
		})
	}

	instances, err := Models.CloneTasksForDay(t.DB, user, today)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load today's tasks"})
	}

	// Completion state for instances already resolved today.
	var records []Models.CompletionRecord
	if err := t.DB.Where("user_id = ? AND completion_date = ?", user.Id, today).
		Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load completions"})
	}
	statusByTask := make(map[uint]string)
	for _, record := range records {
		statusByTask[record.TaskID] = record.Status
	}

	type taskWithStatus struct {
		Models.TaskInstance
		CompletionStatus string `json:"completion_status,omitempty"`
	}
	response := make([]taskWithStatus, 0, len(instances))
	for _, instance := range instances {
		response = append(response, taskWithStatus{
			TaskInstance:     instance,
			CompletionStatus: statusByTask[instance.ID],
		})
	}

	return ctx.JSON(fiber.Map{
		"date":  today,
		"tasks": response,
	})
}

type CreateTaskRequest struct {
	UserID      uint   `json:"user_id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Criticality string `json:"criticality" validate:"required,oneof=low medium high critical"`
	IsMandatory bool   `json:"is_mandatory"`
	TaskDate    string `json:"task_date"`
}

// CreateTask registers an ad-hoc instance outside the template clone flow.
// Points are frozen from the criticality table by the model hook.
func (t *TaskController) CreateTask(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req CreateTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assignee := user
	if req.UserID != 0 && req.UserID != user.Id {
		// Only admins may assign tasks to someone else.
		if user.Permission < 3 {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot assign tasks to other users"})
		}
		if err := t.DB.Where("id = ?", req.UserID).First(&assignee).Error; err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Assignee not found"})
		}
	}

	taskDate := req.TaskDate
	if taskDate == "" {
		taskDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", taskDate); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task_date must be YYYY-MM-DD"})
	}

	instance := Models.TaskInstance{
		UserID:      assignee.Id,
		SectorID:    assignee.SectorID,
		Title:       req.Title,
		Description: req.Description,
		Criticality: req.Criticality,
		IsMandatory: req.IsMandatory,
		TaskDate:    taskDate,
	}
	if err := t.DB.Create(&instance).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(instance)
}

// GetUserTasks lists a user's instances within a date range, with their
// completion records. Admin review surface; it never re-scores anything.
func (t *TaskController) GetUserTasks(ctx *fiber.Ctx) error {
	userID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	query := t.DB.Where("user_id = ?", userID)
	if from := ctx.Query("from"); from != "" {
		query = query.Where("task_date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("task_date <= ?", to)
	}

	var instances []Models.TaskInstance
	if err := query.Order("task_date asc, id asc").Find(&instances).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}

	var records []Models.CompletionRecord
	if err := t.DB.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch completions"})
	}

	return ctx.JSON(fiber.Map{
		"tasks":       instances,
		"completions": records,
	})
}

type TemplateRequest struct {
	SectorID    uint   `json:"sector_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Criticality string `json:"criticality" validate:"required,oneof=low medium high critical"`
	IsMandatory bool   `json:"is_mandatory"`
	Active      *bool  `json:"active"`
}

func (t *TaskController) GetTemplates(ctx *fiber.Ctx) error {
	var templates []Models.TaskTemplate
	query := t.DB
	if sector := ctx.Query("sector_id"); sector != "" {
		query = query.Where("sector_id = ?", sector)
	}
	if err := query.Find(&templates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch templates"})
	}
	return ctx.JSON(templates)
}

func (t *TaskController) CreateTemplate(ctx *fiber.Ctx) error {
	var req TemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template := Models.TaskTemplate{
		SectorID:    req.SectorID,
		Title:       req.Title,
		Description: req.Description,
		Criticality: req.Criticality,
		IsMandatory: req.IsMandatory,
		Active:      true,
	}
	if req.Active != nil {
		template.Active = *req.Active
	}
	if err := t.DB.Create(&template).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create template"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(template)
}

func (t *TaskController) UpdateTemplate(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	var template Models.TaskTemplate
	if err := t.DB.First(&template, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}

	var req TemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template.SectorID = req.SectorID
	template.Title = req.Title
	template.Description = req.Description
	template.Criticality = req.Criticality
	template.IsMandatory = req.IsMandatory
	if req.Active != nil {
		template.Active = *req.Active
	}
	if err := t.DB.Save(&template).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update template"})
	}
	return ctx.JSON(template)
}

func (t *TaskController) DeleteTemplate(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	var template Models.TaskTemplate
	if err := t.DB.First(&template, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	t.DB.Delete(&template)

	return ctx.JSON(fiber.Map{"message": "Template deleted successfully"})
}
