package Models

import (
	"gorm.io/gorm"
)

const (
	CriticalityLow      = "low"
	CriticalityMedium   = "medium"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"
)

// CriticalityPoint maps a task criticality to the points a new task instance
// is worth. Read at instance creation time only; editing a row does not
// rescore existing instances.
type CriticalityPoint struct {
	gorm.Model
	Criticality string `json:"criticality" gorm:"uniqueIndex;size:16"`
	Points      int    `json:"points"`
}

func ValidCriticality(criticality string) bool {
	switch criticality {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}

// PointsForCriticality looks up the current point value for a criticality.
// Unknown criticalities are worth 0 points.
func PointsForCriticality(db *gorm.DB, criticality string) int {
	var entry CriticalityPoint
	if err := db.Where("criticality = ?", criticality).First(&entry).Error; err != nil {
		return 0
	}
	return entry.Points
}

// SeedCriticalityPoints inserts the default point table if the rows are missing.
func SeedCriticalityPoints(db *gorm.DB) error {
	defaults := []CriticalityPoint{
		{Criticality: CriticalityLow, Points: 5},
		{Criticality: CriticalityMedium, Points: 10},
		{Criticality: CriticalityHigh, Points: 20},
		{Criticality: CriticalityCritical, Points: 30},
	}
	for _, entry := range defaults {
		var row CriticalityPoint
		if err := db.Where(CriticalityPoint{Criticality: entry.Criticality}).
			Attrs(CriticalityPoint{Points: entry.Points}).
			FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
