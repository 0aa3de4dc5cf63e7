package wishlist

import (
	"context"

	"github.com/gamewishlabs/gamewish-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID loads a wishlist with its games expanded, ordered by name.
func (r *Repository) FindByUserID(ctx context.Context, userID string) (*models.Wishlist, error) {
	var record models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Games", func(db *gorm.DB) *gorm.DB {
			return db.Order("games.name ASC")
		}).
		Where("user_id = ?", userID).
		First(&record).
		Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts an empty wishlist for the user.
func (r *Repository) Create(ctx context.Context, userID, username string) (*models.Wishlist, error) {
	record := models.Wishlist{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		Games:    []models.Game{},
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetOrCreateGame resolves a game by name, creating the row on first reference.
func (r *Repository) GetOrCreateGame(ctx context.Context, name string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Where(models.Game{Name: name}).
		Attrs(models.Game{ID: uuid.New()}).
		FirstOrCreate(&game).
		Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// FindGameByName loads a game row by its exact name.
func (r *Repository) FindGameByName(ctx context.Context, name string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// AddMembership inserts the wishlist-game edge and ignores duplicates.
func (r *Repository) AddMembership(ctx context.Context, wishlistID, gameID uuid.UUID) error {
	if wishlistID == uuid.Nil || gameID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_games (wishlist_id, game_id) VALUES (?, ?) ON CONFLICT (wishlist_id, game_id) DO NOTHING`, wishlistID, gameID).
		Error
}

// RemoveMembership deletes the wishlist-game edge and reports how many rows
// were affected. The game row itself is never touched.
func (r *Repository) RemoveMembership(ctx context.Context, wishlistID, gameID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Exec(`DELETE FROM wishlist_games WHERE wishlist_id = ? AND game_id = ?`, wishlistID, gameID)
	return result.RowsAffected, result.Error
}

type trackedRow struct {
	Name   string `gorm:"column:name"`
	UserID string `gorm:"column:user_id"`
}

// ListTracked returns every game referenced by at least one wishlist, with the
// user ids of the wishlists holding it.
func (r *Repository) ListTracked(ctx context.Context) ([]TrackedGame, error) {
	var rows []trackedRow
	err := r.db.WithContext(ctx).
		Table("wishlist_games wg").
		Select("g.name AS name, w.user_id AS user_id").
		Joins("JOIN games g ON g.id = wg.game_id").
		Joins("JOIN wishlists w ON w.id = wg.wishlist_id").
		Order("g.name ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	tracked := make([]TrackedGame, 0)
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.Name]
		if !ok {
			i = len(tracked)
			index[row.Name] = i
			tracked = append(tracked, TrackedGame{Name: row.Name})
		}
		tracked[i].Owners = append(tracked[i].Owners, row.UserID)
	}
	return tracked, nil
}
