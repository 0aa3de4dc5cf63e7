package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/gamewishlabs/gamewish-backend/pkg/db"
	"github.com/gamewishlabs/gamewish-backend/pkg/db/models"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, userID string) (WishlistDTO, error)
	Create(ctx context.Context, input CreateInput) (WishlistDTO, error)
	AddGame(ctx context.Context, userID, name string) (WishlistDTO, error)
	RemoveGame(ctx context.Context, userID, name string) (WishlistDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Get returns the wishlist for a user with its games expanded.
func (s *service) Get(ctx context.Context, userID string) (WishlistDTO, error) {
	record, err := s.findWishlist(ctx, userID)
	if err != nil {
		return WishlistDTO{}, err
	}
	return newWishlistDTO(record), nil
}

// Create opens an empty wishlist; at most one exists per user id.
func (s *service) Create(ctx context.Context, input CreateInput) (WishlistDTO, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "userid is required")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	record, err := s.repo.Create(ctx, userID, username)
	if err != nil {
		if db.IsUniqueViolation(err, "wishlists_user_id_key") {
			return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "wishlist already exists for this user")
		}
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist")
	}
	return newWishlistDTO(record), nil
}

// AddGame resolves or creates the game and adds the membership edge. Adding a
// game that is already present leaves the wishlist unchanged.
func (s *service) AddGame(ctx context.Context, userID, name string) (WishlistDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "game data must include a 'name' field")
	}

	record, err := s.findWishlist(ctx, userID)
	if err != nil {
		return WishlistDTO{}, err
	}

	game, err := s.repo.GetOrCreateGame(ctx, name)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve game")
	}
	if err := s.repo.AddMembership(ctx, record.ID, game.ID); err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add game to wishlist")
	}

	return s.Get(ctx, userID)
}

// RemoveGame removes the membership edge only; an unknown game or one not on
// the wishlist is a validation error, never a silent no-op.
func (s *service) RemoveGame(ctx context.Context, userID, name string) (WishlistDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "game data must include a 'name' field")
	}

	record, err := s.findWishlist(ctx, userID)
	if err != nil {
		return WishlistDTO{}, err
	}

	game, err := s.repo.FindGameByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "game not found")
		}
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load game")
	}

	removed, err := s.repo.RemoveMembership(ctx, record.ID, game.ID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove game from wishlist")
	}
	if removed == 0 {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "game is not in this wishlist")
	}

	return s.Get(ctx, userID)
}

func (s *service) findWishlist(ctx context.Context, userID string) (*models.Wishlist, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return record, nil
}
