package repository

import (
	"testing"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewUserRepository(testDB)
}

func newCustomer(email string) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Ana Souza",
		Address:      "Rua das Flores, 10",
		Role:         model.RoleUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{name: "Valid customer", user: newCustomer("ana@example.com")},
		{name: "Duplicate email", user: newCustomer("ana@example.com"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	_, repo := setupUserTest(t)
	user := newCustomer("ana@example.com")
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.Email)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByEmailIgnoresCase(t *testing.T) {
	_, repo := setupUserTest(t)
	user := newCustomer("ana@example.com")
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "Exact", email: "ana@example.com"},
		{name: "Mixed case and spaces", email: "  Ana@Example.COM "},
		{name: "Unknown", email: "bia@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
		})
	}
}

func TestUserRepository_EmailTaken(t *testing.T) {
	_, repo := setupUserTest(t)
	ana := newCustomer("ana@example.com")
	bia := newCustomer("bia@example.com")
	require.NoError(t, repo.Create(ana))
	require.NoError(t, repo.Create(bia))

	taken, err := repo.EmailTaken("ANA@example.com", bia.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTaken("ana@example.com", ana.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own email is not taken")

	taken, err = repo.EmailTaken("carla@example.com", ana.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_UpdateProfileKeepsRoleAndPassword(t *testing.T) {
	testDB, repo := setupUserTest(t)
	user := newCustomer("ana@example.com")
	require.NoError(t, repo.Create(user))

	edited := *user
	edited.Name = "Ana S."
	edited.Address = "Av. Paulista, 1000"
	edited.Role = model.RoleAdmin
	edited.PasswordHash = "overwritten"
	require.NoError(t, repo.UpdateProfile(&edited))

	var stored model.User
	require.NoError(t, testDB.First(&stored, user.ID).Error)
	assert.Equal(t, "Ana S.", stored.Name)
	assert.Equal(t, "Av. Paulista, 1000", stored.Address)
	assert.Equal(t, model.RoleUser, stored.Role)
	assert.Equal(t, "hashedpassword", stored.PasswordHash)

	assert.ErrorIs(t, repo.UpdateProfile(&model.User{ID: 9999, Name: "x"}), gorm.ErrRecordNotFound)
}
