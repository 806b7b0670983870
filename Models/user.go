package Models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	Id         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name"`
	Email      string    `json:"email" gorm:"uniqueIndex;size:255"`
	Password   []byte    `json:"-"`
	Permission int       `json:"permission"`
	SectorID   uint      `json:"sector_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Sector struct {
	gorm.Model
	Name      string `json:"name"`
	CompanyID uint   `json:"company_id"`
}
