package repository

import (
	"testing"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFavoriteRepository(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Email: "fav@example.com", PasswordHash: "hash", Name: "Fav"}
	require.NoError(t, testDB.Create(user).Error)
	cupcake := &model.Cupcake{Name: "Caramelo Salgado", Price: 14.90}
	require.NoError(t, testDB.Create(cupcake).Error)

	repo := NewFavoriteRepository(testDB)

	require.NoError(t, repo.Create(&model.Favorite{UserID: user.ID, CupcakeID: cupcake.ID}))
	assert.Error(t, repo.Create(&model.Favorite{UserID: user.ID, CupcakeID: cupcake.ID}), "pair is unique")

	favorites, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Caramelo Salgado", favorites[0].Cupcake.Name)

	ids, err := repo.CupcakeIDsByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{cupcake.ID}, ids)

	_, err = repo.FindByUserAndCupcake(user.ID, cupcake.ID)
	assert.NoError(t, err)

	require.NoError(t, repo.Delete(user.ID, cupcake.ID))
	assert.ErrorIs(t, repo.Delete(user.ID, cupcake.ID), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(&model.Favorite{UserID: user.ID, CupcakeID: cupcake.ID}), "can add again after delete")
}
