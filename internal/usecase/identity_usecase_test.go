package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func TestIdentityResolve(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", Username: "jihoon"}))

	uc := NewIdentityUseCase(fakeVerifier{"good": "u1", "orphan": "u2"}, users)

	identity, err := uc.Resolve(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{UserID: "u1", Username: "jihoon", Nickname: "jihoon"}, identity)

	for _, token := range []string{"", "bad", "orphan"} {
		_, err := uc.Resolve(ctx, token)
		assert.True(t, errors.Is(err, errors.CodeUnauthorized), "token %q", token)
	}
}
