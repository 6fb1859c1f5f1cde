package service

import (
	"testing"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*gorm.DB, CartService, *session.Session) {
	testDB := setupTestDB(t)
	registry := session.NewRegistry(time.Hour)
	return testDB, NewCartService(repository.NewCupcakeRepository(testDB)), registry.Create()
}

func TestCartService_AddItem(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	chocolate := seedCupcake(t, testDB, "Chocolate Delight", 12.90)
	strawberry := seedCupcake(t, testDB, "Morango Fresco", 13.90)

	_, err := cartService.AddItem(sess, chocolate.ID, 1)
	require.NoError(t, err)
	_, err = cartService.AddItem(sess, chocolate.ID, 2)
	require.NoError(t, err)
	view, err := cartService.AddItem(sess, strawberry.ID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 12.90, view.Items[0].UnitPrice)
	assert.Equal(t, 4, view.TotalItems)
	assert.Equal(t, 52.60, view.TotalPrice)
}

func TestCartService_AddItemRejects(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	cupcake := seedCupcake(t, testDB, "Chocolate Delight", 12.90)

	_, err := cartService.AddItem(sess, cupcake.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = cartService.AddItem(sess, 999, 1)
	assert.ErrorIs(t, err, ErrCupcakeNotFound)

	assert.Empty(t, cartService.View(sess).Items)
}

func TestCartService_PriceCapturedAtAdd(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	cupcake := seedCupcake(t, testDB, "Chocolate Delight", 12.90)

	_, err := cartService.AddItem(sess, cupcake.ID, 1)
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&model.Cupcake{}).Where("id = ?", cupcake.ID).Update("price", 20).Error)

	assert.Equal(t, 12.90, cartService.View(sess).TotalPrice)
}

func TestCartService_EditLines(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	cupcake := seedCupcake(t, testDB, "Chocolate Delight", 12.90)
	_, err := cartService.AddItem(sess, cupcake.ID, 1)
	require.NoError(t, err)

	view, err := cartService.UpdateQuantity(sess, cupcake.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalItems)

	view, err = cartService.UpdateNotes(sess, cupcake.ID, "granulado extra")
	require.NoError(t, err)
	assert.Equal(t, "granulado extra", view.Items[0].Notes)

	view, err = cartService.UpdateQuantity(sess, 999, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalItems)

	view, err = cartService.UpdateQuantity(sess, cupcake.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = cartService.AddItem(sess, cupcake.ID, 2)
	require.NoError(t, err)
	view, err = cartService.RemoveItem(sess, cupcake.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalPrice)

	_, err = cartService.AddItem(sess, cupcake.ID, 2)
	require.NoError(t, err)
	view, err = cartService.Clear(sess)
	require.NoError(t, err)
	assert.Zero(t, view.TotalItems)
}

func TestCartService_EditsRefreshPendingOrder(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	checkoutService := NewCheckoutService(nil)
	cupcake := seedCupcake(t, testDB, "Chocolate Delight", 12.90)

	_, err := cartService.AddItem(sess, cupcake.ID, 1)
	require.NoError(t, err)
	_, err = checkoutService.Start(sess)
	require.NoError(t, err)

	_, err = cartService.UpdateQuantity(sess, cupcake.ID, 3)
	require.NoError(t, err)
	pending, err := checkoutService.View(sess)
	require.NoError(t, err)
	assert.Equal(t, 3, pending.TotalItems)
	assert.Equal(t, 38.70, pending.Total)

	_, err = cartService.Clear(sess)
	require.NoError(t, err)
	_, err = checkoutService.View(sess)
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
}

func TestCartService_EditsRefusedWhileSubmitting(t *testing.T) {
	testDB, cartService, sess := setupCartServiceTest(t)
	cupcake := seedCupcake(t, testDB, "Chocolate Delight", 12.90)
	_, err := cartService.AddItem(sess, cupcake.ID, 1)
	require.NoError(t, err)

	require.True(t, sess.Begin())
	_, err = cartService.AddItem(sess, cupcake.ID, 1)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = cartService.UpdateQuantity(sess, cupcake.ID, 5)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = cartService.Clear(sess)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Equal(t, 1, cartService.View(sess).TotalItems)
	sess.End()

	view, err := cartService.UpdateQuantity(sess, cupcake.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalItems)
}
