package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/db"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/docecupcake/cupcake-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	util.BcryptCost = bcrypt.MinCost
}

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) *model.User {
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Test User", Role: role}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createCupcake(t *testing.T, testDB *gorm.DB, name string, price float64) *model.Cupcake {
	cupcake := &model.Cupcake{Name: name, Price: price}
	require.NoError(t, testDB.Create(cupcake).Error)
	return cupcake
}

// asUser injects the principal the way Authenticate would.
func asUser(u *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetPrincipal(c, middleware.Principal{UserID: u.ID, Email: u.Email, Role: u.Role})
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func doRequestWithToken(method, path, token string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func recorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
