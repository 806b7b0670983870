package Controllers

import (
	"Cadence/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PointsConfigController lets administrators edit the criticality→points
// table. Edits only affect task instances created afterwards.
type PointsConfigController struct {
	DB *gorm.DB
}

func NewPointsConfigController(db *gorm.DB) *PointsConfigController {
	return &PointsConfigController{DB: db}
}

func (p *PointsConfigController) GetCriticalityPoints(ctx *fiber.Ctx) error {
	var entries []Models.CriticalityPoint
	if err := p.DB.Order("points asc").Find(&entries).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch point table"})
	}
	return ctx.JSON(entries)
}

type UpdateCriticalityPointsRequest struct {
	Criticality string `json:"criticality" validate:"required,oneof=low medium high critical"`
	Points      int    `json:"points" validate:"gte=0"`
}

func (p *PointsConfigController) UpdateCriticalityPoints(ctx *fiber.Ctx) error {
	var req UpdateCriticalityPointsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var entry Models.CriticalityPoint
	if err := p.DB.Where("criticality = ?", req.Criticality).First(&entry).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Criticality not found"})
	}

	entry.Points = req.Points
	if err := p.DB.Save(&entry).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update point table"})
	}
	return ctx.JSON(entry)
}
