package model

import (
	"time"

	"gorm.io/gorm"
)

type Cupcake struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Image       string         `json:"image"`
	IsFeatured  bool           `gorm:"default:false;index" json:"featured"`
	IsNew       bool           `gorm:"default:false;index" json:"new"`
	Rating      float64        `gorm:"default:0" json:"rating"` // 0 to 5
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Cupcake) TableName() string {
	return "cupcakes"
}

// CupcakeView is a catalog entry annotated for the viewing user.
type CupcakeView struct {
	Cupcake
	IsFavorite bool `json:"is_favorite"`
}
