package controller

import (
	"errors"
	"net/http"

	"github.com/docecupcake/cupcake-backend/internal/app/service"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

type AddFavoriteRequest struct {
	CupcakeID uint `json:"cupcake_id" binding:"required"`
}

// GET /api/v1/favorites
func (ctrl *FavoriteController) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	favorites, err := ctrl.favoriteService.List(p.UserID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list favorites", err, map[string]interface{}{
			"user_id": p.UserID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// POST /api/v1/favorites
func (ctrl *FavoriteController) Add(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req AddFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	favorite, err := ctrl.favoriteService.Add(p.UserID, req.CupcakeID)
	if err != nil {
		ctrl.respondError(c, err, p.UserID, req.CupcakeID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

// DELETE /api/v1/favorites/:cupcakeId
func (ctrl *FavoriteController) Remove(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cupcakeID, ok := paramID(c, "cupcakeId")
	if !ok {
		return
	}

	if err := ctrl.favoriteService.Remove(p.UserID, cupcakeID); err != nil {
		ctrl.respondError(c, err, p.UserID, cupcakeID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}

// POST /api/v1/favorites/:cupcakeId/toggle
func (ctrl *FavoriteController) Toggle(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cupcakeID, ok := paramID(c, "cupcakeId")
	if !ok {
		return
	}

	on, err := ctrl.favoriteService.Toggle(p.UserID, cupcakeID)
	if err != nil {
		ctrl.respondError(c, err, p.UserID, cupcakeID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": on})
}

func (ctrl *FavoriteController) respondError(c *gin.Context, err error, userID, cupcakeID uint) {
	switch {
	case errors.Is(err, service.ErrCupcakeNotFound):
		apperrors.NotFound(c, apperrors.CupcakeNotFound, "Cupcake not found")
	case errors.Is(err, service.ErrFavoriteExists):
		apperrors.Conflict(c, apperrors.FavoriteAlreadyExists, "Cupcake is already in your favorites")
	case errors.Is(err, service.ErrFavoriteNotFound):
		apperrors.NotFound(c, apperrors.FavoriteNotFound, "Cupcake is not in your favorites")
	default:
		middleware.GetLoggerFromContext(c).Error("Favorite operation failed", err, map[string]interface{}{
			"user_id":    userID,
			"cupcake_id": cupcakeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "favorite")
	}
}
