package db

import (
	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Cupcake{},
		&model.Order{},
		&model.OrderItem{},
		&model.Favorite{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// DefaultCupcakes is the catalog a fresh database starts with.
var DefaultCupcakes = []model.Cupcake{
	{
		Name:        "Chocolate Delight",
		Description: "Delicioso cupcake de chocolate com cobertura de ganache",
		Price:       12.90,
		Image:       "https://images.docecupcake.com.br/chocolate-delight.jpg",
		IsFeatured:  true,
		Rating:      4.8,
	},
	{
		Name:        "Morango Fresco",
		Description: "Cupcake de baunilha com recheio e cobertura de morango",
		Price:       13.90,
		Image:       "https://images.docecupcake.com.br/morango-fresco.jpg",
		IsNew:       true,
		Rating:      4.5,
	},
	{
		Name:        "Caramelo Salgado",
		Description: "Cupcake de caramelo com toque de sal marinho",
		Price:       14.90,
		Image:       "https://images.docecupcake.com.br/caramelo-salgado.jpg",
		IsFeatured:  true,
		Rating:      4.9,
	},
}

// SeedCupcakes inserts DefaultCupcakes when the catalog is empty.
func SeedCupcakes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Cupcake{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Cupcakes already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	cupcakes := make([]model.Cupcake, len(DefaultCupcakes))
	copy(cupcakes, DefaultCupcakes)
	if err := db.Create(&cupcakes).Error; err != nil {
		logger.Error("Failed to seed cupcakes", err)
		return err
	}

	logger.Info("Cupcakes seeded successfully", map[string]interface{}{
		"total_records": len(cupcakes),
	})
	return nil
}
