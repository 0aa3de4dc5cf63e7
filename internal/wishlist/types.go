package wishlist

import (
	"github.com/gamewishlabs/gamewish-backend/pkg/db/models"
	"github.com/google/uuid"
)

// GameDTO is the wire representation of a tracked game.
type GameDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// WishlistDTO is the wire representation of a wishlist with its expanded games.
type WishlistDTO struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"userid"`
	Username string    `json:"username"`
	Games    []GameDTO `json:"games"`
}

// CreateInput carries the fields required to open an empty wishlist.
type CreateInput struct {
	UserID   string `json:"userid" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// TrackedGame pairs a game name with the user ids of every wishlist holding it.
type TrackedGame struct {
	Name   string
	Owners []string
}

func newWishlistDTO(record *models.Wishlist) WishlistDTO {
	games := make([]GameDTO, 0, len(record.Games))
	for _, game := range record.Games {
		games = append(games, GameDTO{ID: game.ID, Name: game.Name})
	}
	return WishlistDTO{
		ID:       record.ID,
		UserID:   record.UserID,
		Username: record.Username,
		Games:    games,
	}
}
