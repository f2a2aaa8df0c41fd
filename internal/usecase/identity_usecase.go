package usecase

import (
	"context"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type IdentityUseCase struct {
	verifier TokenVerifier
	userRepo repository.UserRepository
}

func NewIdentityUseCase(verifier TokenVerifier, userRepo repository.UserRepository) *IdentityUseCase {
	return &IdentityUseCase{
		verifier: verifier,
		userRepo: userRepo,
	}
}

// Resolve turns a bearer token into the Identity the engines act on.
func (uc *IdentityUseCase) Resolve(ctx context.Context, token string) (entity.Identity, error) {
	if token == "" {
		return entity.Identity{}, errors.Unauthorized("Authentication token is required", nil)
	}

	uid, err := uc.verifier.Verify(ctx, token)
	if err != nil {
		return entity.Identity{}, errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return entity.Identity{}, errors.Unauthorized("Unknown user", err)
		}
		return entity.Identity{}, err
	}

	return entity.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Nickname: user.DisplayName(),
	}, nil
}
