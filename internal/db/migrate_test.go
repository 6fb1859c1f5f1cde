package db

import (
	"testing"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCupcakes_OnlyWhenEmpty(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, SeedCupcakes(testDB))
	require.NoError(t, SeedCupcakes(testDB))

	var cupcakes []model.Cupcake
	require.NoError(t, testDB.Order("id").Find(&cupcakes).Error)
	require.Len(t, cupcakes, 3)
	assert.Equal(t, "Chocolate Delight", cupcakes[0].Name)
	assert.Equal(t, 12.90, cupcakes[0].Price)
	assert.True(t, cupcakes[2].IsFeatured)
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, SeedCupcakes(testDB))
	require.NoError(t, TruncateAllTables(testDB))

	var count int64
	testDB.Model(&model.Cupcake{}).Count(&count)
	assert.Zero(t, count)
}
