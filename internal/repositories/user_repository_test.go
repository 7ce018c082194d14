package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

func userRepoFactories() map[string]func(t *testing.T) repositories.UserRepository {
	return map[string]func(t *testing.T) repositories.UserRepository{
		"memory": func(t *testing.T) repositories.UserRepository {
			return repositories.NewMockUserRepository()
		},
		"gorm-sqlite": func(t *testing.T) repositories.UserRepository {
			return repositories.NewGORMUserRepository(openSQLite(t))
		},
		"mongo": func(t *testing.T) repositories.UserRepository {
			repo := repositories.NewMongoUserRepository(openMongo(t))
			require.NoError(t, repo.EnsureIndexes(context.Background()))
			return repo
		},
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	for name, factory := range userRepoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			user := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			assert.True(t, models.IsValidID(user.ID))
			assert.Equal(t, models.RoleUser, user.Role)

			byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			byID, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "hash", byID.PasswordHash)

			_, err = repo.GetByEmail(ctx, "ADA@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound, "email matching is case-sensitive")

			err = repo.Create(ctx, &models.User{Name: "Imposter", Email: "ada@example.com"})
			assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
		})
	}
}

func TestUserRepository_LinkFederatedID(t *testing.T) {
	for name, factory := range userRepoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			user := &models.User{Name: "Grace", Email: "grace@example.com", PasswordHash: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			_, err := repo.GetByFederatedID(ctx, "uid-42")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			uid := "uid-42"
			user.FederatedID = &uid
			user.AvatarURL = "https://example.com/grace.png"
			require.NoError(t, repo.Update(ctx, user))

			linked, err := repo.GetByFederatedID(ctx, "uid-42")
			require.NoError(t, err)
			assert.Equal(t, user.ID, linked.ID)
			assert.Equal(t, "hash", linked.PasswordHash)
			assert.Equal(t, "https://example.com/grace.png", linked.AvatarURL)

			other := &models.User{Name: "Other", Email: "other@example.com", FederatedID: &uid}
			assert.ErrorIs(t, repo.Create(ctx, other), repositories.ErrDuplicateKey)

			assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: models.NewID(), Email: "x@example.com"}), repositories.ErrNotFound)
		})
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, repositories.SortKey{Field: "createdAt", Descending: true}, repositories.ParseSort(""))
	assert.Equal(t, repositories.SortKey{Field: "name"}, repositories.ParseSort("name"))
	assert.Equal(t, repositories.SortKey{Field: "price", Descending: true}, repositories.ParseSort("-price"))
	assert.Equal(t, repositories.SortKey{Field: "createdAt", Descending: true}, repositories.ParseSort("-password"))
}
