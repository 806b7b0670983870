package Controllers

import (
	"strconv"

	"Cadence/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AlertController is the admin inbox over the alerts the nightly checker
// generates. All mutations are idempotent: re-marking a read alert or
// deleting a gone one is a no-op, never an error.
type AlertController struct {
	DB *gorm.DB
}

func NewAlertController(db *gorm.DB) *AlertController {
	return &AlertController{DB: db}
}

type AlertView struct {
	Models.AdminAlert
	TaskTitle    string `json:"task_title"`
	AssigneeName string `json:"assignee_name"`
}

// GetAlerts lists alerts newest first, joined to task title and assignee
// name.
func (a *AlertController) GetAlerts(ctx *fiber.Ctx) error {
	var alerts []Models.AdminAlert
	if err := a.DB.Order("created_at desc").Find(&alerts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch alerts"})
	}

	var tasks []Models.TaskInstance
	if err := a.DB.Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}
	var users []Models.User
	if err := a.DB.Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	titleByID := make(map[uint]string, len(tasks))
	for _, task := range tasks {
		titleByID[task.ID] = task.Title
	}
	nameByID := make(map[uint]string, len(users))
	for _, user := range users {
		nameByID[user.Id] = user.Name
	}

	views := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		views = append(views, AlertView{
			AdminAlert:   alert,
			TaskTitle:    titleByID[alert.TaskID],
			AssigneeName: nameByID[alert.UserID],
		})
	}
	return ctx.JSON(views)
}

// GetUnreadCount returns the number of unread alerts.
func (a *AlertController) GetUnreadCount(ctx *fiber.Ctx) error {
	var count int64
	if err := a.DB.Model(&Models.AdminAlert{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count alerts"})
	}
	return ctx.JSON(fiber.Map{"unread": count})
}

// MarkRead flags one alert as read.
func (a *AlertController) MarkRead(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid alert ID"})
	}

	result := a.DB.Model(&Models.AdminAlert{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update alert"})
	}
	return ctx.JSON(fiber.Map{"message": "Alert marked as read"})
}

// MarkAllRead flags every unread alert as read.
func (a *AlertController) MarkAllRead(ctx *fiber.Ctx) error {
	result := a.DB.Model(&Models.AdminAlert{}).Where("is_read = ?", false).Update("is_read", true)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update alerts"})
	}
	return ctx.JSON(fiber.Map{
		"message": "All alerts marked as read",
		"updated": result.RowsAffected,
	})
}

// DeleteAlert removes one alert.
func (a *AlertController) DeleteAlert(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid alert ID"})
	}

	if err := a.DB.Delete(&Models.AdminAlert{}, id).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete alert"})
	}
	return ctx.JSON(fiber.Map{"message": "Alert deleted successfully"})
}
