package model

import "time"

// Favorite is hard deleted so the (user, cupcake) pair can be added again.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_cupcake" json:"user_id"`
	CupcakeID uint      `gorm:"not null;uniqueIndex:idx_favorite_user_cupcake" json:"cupcake_id"`
	CreatedAt time.Time `json:"created_at"`

	Cupcake Cupcake `gorm:"foreignKey:CupcakeID" json:"cupcake,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
