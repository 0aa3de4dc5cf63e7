package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist holds one Discord user's tracked games. UserID is the platform
// snowflake and is unique across rows; Username is informational only.
type Wishlist struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:text;not null;uniqueIndex:wishlists_user_id_key" json:"userid"`
	Username  string    `gorm:"column:username;type:text;not null" json:"username"`
	Games     []Game    `gorm:"many2many:wishlist_games;" json:"games"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
