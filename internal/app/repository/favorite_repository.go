package repository

import (
	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(favorite *model.Favorite) error
	FindByUserID(userID uint) ([]model.Favorite, error)
	FindByUserAndCupcake(userID, cupcakeID uint) (*model.Favorite, error)
	CupcakeIDsByUser(userID uint) ([]uint, error)
	Delete(userID, cupcakeID uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(favorite *model.Favorite) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":    favorite.UserID,
		"cupcake_id": favorite.CupcakeID,
	})

	if err := r.db.Create(favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"user_id":    favorite.UserID,
			"cupcake_id": favorite.CupcakeID,
		})
		return err
	}

	logger.Debug("Favorite created in database", map[string]interface{}{
		"favorite_id": favorite.ID,
	})
	return nil
}

func (r *favoriteRepository) FindByUserID(userID uint) ([]model.Favorite, error) {
	logger.Debug("Finding favorites by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var favorites []model.Favorite
	err := r.db.Where("user_id = ?", userID).
		Preload("Cupcake").
		Order("created_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorites by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Favorites found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(favorites),
	})
	return favorites, nil
}

func (r *favoriteRepository) FindByUserAndCupcake(userID, cupcakeID uint) (*model.Favorite, error) {
	var favorite model.Favorite
	err := r.db.Where("user_id = ? AND cupcake_id = ?", userID, cupcakeID).First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) CupcakeIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Favorite{}).Where("user_id = ?", userID).Pluck("cupcake_id", &ids).Error; err != nil {
		logger.Error("Failed to list favorite cupcake IDs", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return ids, nil
}

// Delete removes the pair. A missing pair yields gorm.ErrRecordNotFound.
func (r *favoriteRepository) Delete(userID, cupcakeID uint) error {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"user_id":    userID,
		"cupcake_id": cupcakeID,
	})

	result := r.db.Where("user_id = ? AND cupcake_id = ?", userID, cupcakeID).Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorite from database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"cupcake_id": cupcakeID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Favorite deleted from database", map[string]interface{}{
		"user_id":    userID,
		"cupcake_id": cupcakeID,
	})
	return nil
}
