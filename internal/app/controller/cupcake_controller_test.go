package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogTest(t *testing.T) (*gorm.DB, *CupcakeController, *FavoriteController) {
	testDB := setupTestDB(t)
	cupcakeRepo := repository.NewCupcakeRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	return testDB,
		NewCupcakeController(service.NewCupcakeService(cupcakeRepo, favoriteRepo)),
		NewFavoriteController(service.NewFavoriteService(favoriteRepo, cupcakeRepo))
}

func cupcakeRouter(ctrl *CupcakeController, handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	group := router.Group("/cupcakes", handlers...)
	group.GET("", ctrl.ListCupcakes)
	group.GET("/:id", ctrl.GetCupcake)
	group.POST("", ctrl.CreateCupcake)
	group.PUT("/:id", ctrl.UpdateCupcake)
	group.DELETE("/:id", ctrl.DeleteCupcake)
	return router
}

func TestCupcakeController_List(t *testing.T) {
	testDB, ctrl, _ := setupCatalogTest(t)
	createCupcake(t, testDB, "Chocolate Delight", 12.90)
	featured := &model.Cupcake{Name: "Caramelo Salgado", Price: 14.90, IsFeatured: true}
	require.NoError(t, testDB.Create(featured).Error)
	router := cupcakeRouter(ctrl)

	w := doJSON(router, http.MethodGet, "/cupcakes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])

	w = doJSON(router, http.MethodGet, "/cupcakes?filter=featured", nil)
	response := decode(t, w)
	assert.Equal(t, float64(1), response["total"])
	first := response["cupcakes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Caramelo Salgado", first["name"])
	assert.Equal(t, false, first["is_favorite"])

	w = doJSON(router, http.MethodGet, "/cupcakes?search=CHOCO", nil)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = doJSON(router, http.MethodGet, "/cupcakes?sort=cheapest", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCupcakeController_ListMarksFavoritesForViewer(t *testing.T) {
	testDB, ctrl, favorites := setupCatalogTest(t)
	user := createUser(t, testDB, "fan@example.com", model.RoleUser)
	cupcake := createCupcake(t, testDB, "Chocolate Delight", 12.90)

	favRouter := gin.New()
	favRouter.POST("/favorites", asUser(user), favorites.Add)
	require.Equal(t, http.StatusCreated, doJSON(favRouter, http.MethodPost, "/favorites", map[string]uint{"cupcake_id": cupcake.ID}).Code)

	w := doJSON(cupcakeRouter(ctrl, asUser(user)), http.MethodGet, fmt.Sprintf("/cupcakes/%d", cupcake.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["cupcake"].(map[string]interface{})["is_favorite"])
}

func TestCupcakeController_CRUD(t *testing.T) {
	_, ctrl, _ := setupCatalogTest(t)
	router := cupcakeRouter(ctrl)

	w := doJSON(router, http.MethodPost, "/cupcakes", map[string]interface{}{"name": "Limão", "price": 11.5, "new": true})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["cupcake"].(map[string]interface{})
	assert.Equal(t, true, created["new"])
	path := fmt.Sprintf("/cupcakes/%v", created["id"])

	w = doJSON(router, http.MethodPost, "/cupcakes", map[string]interface{}{"name": "Sem preço"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"name": "Limão Siciliano", "price": 12, "rating": 4.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Limão Siciliano", decode(t, w)["cupcake"].(map[string]interface{})["name"])

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"name": "Limão", "price": 12, "rating": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodDelete, path, nil).Code)
	w = doJSON(router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CupcakeNotFound, decode(t, w)["error"])
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, path, nil).Code)
}
