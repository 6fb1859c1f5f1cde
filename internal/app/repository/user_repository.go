package repository

import (
	"strings"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(email string) (*model.User, error)
	// EmailTaken reports whether another account than exceptID uses email.
	EmailTaken(email string, exceptID uint) (bool, error)
	// UpdateProfile writes name, email and address; role and password hash
	// are never touched.
	UpdateProfile(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating customer account", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create customer account", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("Customer account created", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Debug("User lookup by ID failed", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		// a miss is the normal outcome of a registration check
		logger.Debug("User lookup by email failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(email string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(email)), exceptID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check email availability", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateProfile(user *model.User) error {
	logger.Debug("Updating customer profile", map[string]interface{}{
		"user_id": user.ID,
	})

	result := r.db.Model(&model.User{ID: user.ID}).Updates(map[string]interface{}{
			"name":    user.Name,
			"email":   user.Email,
			"address": user.Address,
		})
	if result.Error != nil {
		logger.Error("Failed to update customer profile", result.Error, map[string]interface{}{
			"user_id": user.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
