package repository

import (
	"strings"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

type CupcakeFilter string

const (
	CupcakeFilterAll      CupcakeFilter = "all"
	CupcakeFilterNew      CupcakeFilter = "new"
	CupcakeFilterFeatured CupcakeFilter = "featured"
)

type CupcakeSort string

const (
	CupcakeSortNewest    CupcakeSort = "newest"
	CupcakeSortPriceAsc  CupcakeSort = "price_asc"
	CupcakeSortPriceDesc CupcakeSort = "price_desc"
	CupcakeSortRating    CupcakeSort = "rating"
)

type CupcakeQuery struct {
	Search string
	Filter CupcakeFilter
	Sort   CupcakeSort
	Limit  int
	Offset int
}

type CupcakeRepository interface {
	Create(cupcake *model.Cupcake) error
	FindWithQuery(q CupcakeQuery) ([]model.Cupcake, int64, error)
	FindByID(id uint) (*model.Cupcake, error)
	Update(cupcake *model.Cupcake) error
	Delete(id uint) error
}

type cupcakeRepository struct {
	db *gorm.DB
}

func NewCupcakeRepository(db *gorm.DB) CupcakeRepository {
	return &cupcakeRepository{db: db}
}

func (r *cupcakeRepository) Create(cupcake *model.Cupcake) error {
	logger.Debug("Creating cupcake in database", map[string]interface{}{
		"name":  cupcake.Name,
		"price": cupcake.Price,
	})

	if err := r.db.Create(cupcake).Error; err != nil {
		logger.Error("Failed to create cupcake in database", err, map[string]interface{}{
			"name": cupcake.Name,
		})
		return err
	}

	logger.Debug("Cupcake created in database", map[string]interface{}{
		"cupcake_id": cupcake.ID,
		"name":       cupcake.Name,
	})
	return nil
}

func (r *cupcakeRepository) FindWithQuery(q CupcakeQuery) ([]model.Cupcake, int64, error) {
	logger.Debug("Finding cupcakes with query", map[string]interface{}{
		"search": q.Search,
		"filter": q.Filter,
		"sort":   q.Sort,
		"limit":  q.Limit,
		"offset": q.Offset,
	})

	query := r.db.Model(&model.Cupcake{})

	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	switch q.Filter {
	case CupcakeFilterNew:
		query = query.Where("is_new = ?", true)
	case CupcakeFilterFeatured:
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count cupcakes", err)
		return nil, 0, err
	}

	switch q.Sort {
	case CupcakeSortPriceAsc:
		query = query.Order("price ASC").Order("id ASC")
	case CupcakeSortPriceDesc:
		query = query.Order("price DESC").Order("id ASC")
	case CupcakeSortRating:
		query = query.Order("rating DESC").Order("id ASC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var cupcakes []model.Cupcake
	if err := query.Find(&cupcakes).Error; err != nil {
		logger.Error("Failed to find cupcakes with query", err)
		return nil, 0, err
	}

	logger.Debug("Cupcakes found", map[string]interface{}{
		"count": len(cupcakes),
		"total": total,
	})
	return cupcakes, total, nil
}

func (r *cupcakeRepository) FindByID(id uint) (*model.Cupcake, error) {
	logger.Debug("Finding cupcake by ID in database", map[string]interface{}{
		"cupcake_id": id,
	})

	var cupcake model.Cupcake
	if err := r.db.First(&cupcake, id).Error; err != nil {
		logger.Error("Failed to find cupcake by ID in database", err, map[string]interface{}{
			"cupcake_id": id,
		})
		return nil, err
	}

	logger.Debug("Cupcake found by ID in database", map[string]interface{}{
		"cupcake_id": cupcake.ID,
		"name":       cupcake.Name,
	})
	return &cupcake, nil
}

func (r *cupcakeRepository) Update(cupcake *model.Cupcake) error {
	logger.Debug("Updating cupcake in database", map[string]interface{}{
		"cupcake_id": cupcake.ID,
	})

	if err := r.db.Save(cupcake).Error; err != nil {
		logger.Error("Failed to update cupcake in database", err, map[string]interface{}{
			"cupcake_id": cupcake.ID,
		})
		return err
	}

	logger.Debug("Cupcake updated in database", map[string]interface{}{
		"cupcake_id": cupcake.ID,
	})
	return nil
}

// Delete soft deletes the cupcake. A missing id yields gorm.ErrRecordNotFound.
func (r *cupcakeRepository) Delete(id uint) error {
	logger.Debug("Deleting cupcake from database", map[string]interface{}{
		"cupcake_id": id,
	})

	result := r.db.Delete(&model.Cupcake{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete cupcake from database", result.Error, map[string]interface{}{
			"cupcake_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Cupcake deleted from database", map[string]interface{}{
		"cupcake_id": id,
	})
	return nil
}
