package service

import (
	"errors"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrFavoriteExists   = errors.New("cupcake already in favorites")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type FavoriteService interface {
	List(userID uint) ([]model.Favorite, error)
	Add(userID, cupcakeID uint) (*model.Favorite, error)
	Remove(userID, cupcakeID uint) error
	// Toggle adds the cupcake when absent and removes it otherwise. It reports
	// whether the cupcake is a favorite afterwards.
	Toggle(userID, cupcakeID uint) (bool, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	cupcakeRepo  repository.CupcakeRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, cupcakeRepo repository.CupcakeRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		cupcakeRepo:  cupcakeRepo,
	}
}

func (s *favoriteService) List(userID uint) ([]model.Favorite, error) {
	return s.favoriteRepo.FindByUserID(userID)
}

func (s *favoriteService) Add(userID, cupcakeID uint) (*model.Favorite, error) {
	if _, err := s.cupcakeRepo.FindByID(cupcakeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCupcakeNotFound
		}
		return nil, err
	}

	if _, err := s.favoriteRepo.FindByUserAndCupcake(userID, cupcakeID); err == nil {
		return nil, ErrFavoriteExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	favorite := &model.Favorite{UserID: userID, CupcakeID: cupcakeID}
	if err := s.favoriteRepo.Create(favorite); err != nil {
		return nil, err
	}

	logger.Info("Favorite added", map[string]interface{}{
		"user_id":    userID,
		"cupcake_id": cupcakeID,
	})
	return favorite, nil
}

func (s *favoriteService) Remove(userID, cupcakeID uint) error {
	if err := s.favoriteRepo.Delete(userID, cupcakeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	logger.Info("Favorite removed", map[string]interface{}{
		"user_id":    userID,
		"cupcake_id": cupcakeID,
	})
	return nil
}

func (s *favoriteService) Toggle(userID, cupcakeID uint) (bool, error) {
	err := s.Remove(userID, cupcakeID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrFavoriteNotFound) {
		return false, err
	}
	if _, err := s.Add(userID, cupcakeID); err != nil {
		return false, err
	}
	return true, nil
}
