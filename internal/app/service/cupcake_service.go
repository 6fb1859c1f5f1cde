package service

import (
	"errors"
	"strings"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCupcakeNotFound = errors.New("cupcake not found")
	ErrInvalidCupcake  = errors.New("invalid cupcake")
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type ListCupcakesInput struct {
	Search   string
	Filter   repository.CupcakeFilter
	Sort     repository.CupcakeSort
	Page     int
	PageSize int
}

type CupcakePage struct {
	Items    []model.CupcakeView `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// CupcakeInput carries the writable catalog fields.
type CupcakeInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	IsFeatured  bool
	IsNew       bool
	Rating      float64
}

type CupcakeService interface {
	ListCupcakes(input ListCupcakesInput, viewerID uint) (*CupcakePage, error)
	GetCupcake(id uint, viewerID uint) (*model.CupcakeView, error)
	CreateCupcake(input CupcakeInput) (*model.Cupcake, error)
	UpdateCupcake(id uint, input CupcakeInput) (*model.Cupcake, error)
	DeleteCupcake(id uint) error
}

type cupcakeService struct {
	cupcakeRepo  repository.CupcakeRepository
	favoriteRepo repository.FavoriteRepository
}

func NewCupcakeService(cupcakeRepo repository.CupcakeRepository, favoriteRepo repository.FavoriteRepository) CupcakeService {
	return &cupcakeService{
		cupcakeRepo:  cupcakeRepo,
		favoriteRepo: favoriteRepo,
	}
}

func (s *cupcakeService) favoriteSet(viewerID uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if viewerID == 0 {
		return set, nil
	}
	ids, err := s.favoriteRepo.CupcakeIDsByUser(viewerID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListCupcakes returns one page of the catalog. Entries carry is_favorite for
// a signed-in viewer; viewerID 0 is a guest.
func (s *cupcakeService) ListCupcakes(input ListCupcakesInput, viewerID uint) (*CupcakePage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	cupcakes, total, err := s.cupcakeRepo.FindWithQuery(repository.CupcakeQuery{
		Search: input.Search,
		Filter: input.Filter,
		Sort:   input.Sort,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}

	favorites, err := s.favoriteSet(viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]model.CupcakeView, len(cupcakes))
	for i, c := range cupcakes {
		views[i] = model.CupcakeView{Cupcake: c, IsFavorite: favorites[c.ID]}
	}

	return &CupcakePage{Items: views, Total: total, Page: page, PageSize: size}, nil
}

func (s *cupcakeService) find(id uint) (*model.Cupcake, error) {
	cupcake, err := s.cupcakeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCupcakeNotFound
		}
		return nil, err
	}
	return cupcake, nil
}

func (s *cupcakeService) GetCupcake(id uint, viewerID uint) (*model.CupcakeView, error) {
	cupcake, err := s.find(id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteSet(viewerID)
	if err != nil {
		return nil, err
	}
	return &model.CupcakeView{Cupcake: *cupcake, IsFavorite: favorites[id]}, nil
}

func validateCupcake(input CupcakeInput) error {
	if strings.TrimSpace(input.Name) == "" || input.Price <= 0 || input.Rating < 0 || input.Rating > 5 {
		return ErrInvalidCupcake
	}
	return nil
}

func (s *cupcakeService) CreateCupcake(input CupcakeInput) (*model.Cupcake, error) {
	if err := validateCupcake(input); err != nil {
		return nil, err
	}
	cupcake := &model.Cupcake{}
	applyCupcakeInput(cupcake, input)
	if err := s.cupcakeRepo.Create(cupcake); err != nil {
		return nil, err
	}

	logger.Info("Cupcake created", map[string]interface{}{
		"cupcake_id": cupcake.ID,
		"name":       cupcake.Name,
	})
	return cupcake, nil
}

func (s *cupcakeService) UpdateCupcake(id uint, input CupcakeInput) (*model.Cupcake, error) {
	if err := validateCupcake(input); err != nil {
		return nil, err
	}
	cupcake, err := s.find(id)
	if err != nil {
		return nil, err
	}
	applyCupcakeInput(cupcake, input)
	if err := s.cupcakeRepo.Update(cupcake); err != nil {
		return nil, err
	}

	logger.Info("Cupcake updated", map[string]interface{}{
		"cupcake_id": cupcake.ID,
	})
	return cupcake, nil
}

func (s *cupcakeService) DeleteCupcake(id uint) error {
	if err := s.cupcakeRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCupcakeNotFound
		}
		return err
	}
	logger.Info("Cupcake deleted", map[string]interface{}{
		"cupcake_id": id,
	})
	return nil
}

func applyCupcakeInput(c *model.Cupcake, input CupcakeInput) {
	c.Name = strings.TrimSpace(input.Name)
	c.Description = strings.TrimSpace(input.Description)
	c.Price = input.Price
	c.Image = input.Image
	c.IsFeatured = input.IsFeatured
	c.IsNew = input.IsNew
	c.Rating = input.Rating
}
