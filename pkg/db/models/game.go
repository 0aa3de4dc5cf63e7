package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a tracked title, keyed by its canonical name.
type Game struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex:games_name_key" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
