package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CupcakeController struct {
	cupcakeService service.CupcakeService
}

func NewCupcakeController(cupcakeService service.CupcakeService) *CupcakeController {
	return &CupcakeController{cupcakeService: cupcakeService}
}

type CupcakeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Image       string  `json:"image"`
	Featured    bool    `json:"featured"`
	New         bool    `json:"new"`
	Rating      float64 `json:"rating" binding:"min=0,max=5"`
}

func (r CupcakeRequest) input() service.CupcakeInput {
	return service.CupcakeInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		IsFeatured:  r.Featured,
		IsNew:       r.New,
		Rating:      r.Rating,
	}
}

var (
	cupcakeFilters = map[string]repository.CupcakeFilter{
		"":         repository.CupcakeFilterAll,
		"all":      repository.CupcakeFilterAll,
		"new":      repository.CupcakeFilterNew,
		"featured": repository.CupcakeFilterFeatured,
	}
	cupcakeSorts = map[string]repository.CupcakeSort{
		"":           repository.CupcakeSortNewest,
		"newest":     repository.CupcakeSortNewest,
		"price_asc":  repository.CupcakeSortPriceAsc,
		"price_desc": repository.CupcakeSortPriceDesc,
		"rating":     repository.CupcakeSortRating,
	}
)

func viewerID(c *gin.Context) uint {
	id, _ := middleware.GetUserID(c)
	return id
}

// ListCupcakes returns a page of the catalog
// GET /api/v1/cupcakes
func (ctrl *CupcakeController) ListCupcakes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, ok := cupcakeFilters[c.Query("filter")]
	if !ok {
		apperrors.RespondWithValidationError(c, map[string]string{"filter": "must be one of all, new, featured"})
		return
	}
	sort, ok := cupcakeSorts[c.Query("sort")]
	if !ok {
		apperrors.RespondWithValidationError(c, map[string]string{"sort": "must be one of newest, price_asc, price_desc, rating"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))

	result, err := ctrl.cupcakeService.ListCupcakes(service.ListCupcakesInput{
		Search:   c.Query("search"),
		Filter:   filter,
		Sort:     sort,
		Page:     page,
		PageSize: pageSize,
	}, viewerID(c))
	if err != nil {
		log.Error("Failed to list cupcakes", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cupcakes":  result.Items,
		"count":     len(result.Items),
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// GetCupcake returns one cupcake
// GET /api/v1/cupcakes/:id
func (ctrl *CupcakeController) GetCupcake(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cupcake, err := ctrl.cupcakeService.GetCupcake(id, viewerID(c))
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cupcake": cupcake})
}

// CreateCupcake adds a catalog entry (admin)
// POST /api/v1/cupcakes
func (ctrl *CupcakeController) CreateCupcake(c *gin.Context) {
	var req CupcakeRequest
	if !bindJSON(c, &req) {
		return
	}

	cupcake, err := ctrl.cupcakeService.CreateCupcake(req.input())
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cupcake": cupcake})
}

// UpdateCupcake replaces a catalog entry (admin)
// PUT /api/v1/cupcakes/:id
func (ctrl *CupcakeController) UpdateCupcake(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CupcakeRequest
	if !bindJSON(c, &req) {
		return
	}

	cupcake, err := ctrl.cupcakeService.UpdateCupcake(id, req.input())
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cupcake": cupcake})
}

// DeleteCupcake removes a catalog entry (admin)
// DELETE /api/v1/cupcakes/:id
func (ctrl *CupcakeController) DeleteCupcake(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.cupcakeService.DeleteCupcake(id); err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cupcake deleted"})
}

func (ctrl *CupcakeController) respondError(c *gin.Context, err error, id uint) {
	switch {
	case errors.Is(err, service.ErrCupcakeNotFound):
		apperrors.NotFound(c, apperrors.CupcakeNotFound, "Cupcake not found")
	case errors.Is(err, service.ErrInvalidCupcake):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name, a positive price and a rating between 0 and 5 are required")
	default:
		middleware.GetLoggerFromContext(c).Error("Cupcake operation failed", err, map[string]interface{}{
			"cupcake_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cupcake")
	}
}
