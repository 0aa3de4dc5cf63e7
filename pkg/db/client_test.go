package db

import (
	"context"
	"strings"
	"testing"

	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, logger.New(logger.Options{ServiceName: "test"}))
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if !strings.Contains(err.Error(), config.EnvDBDSN) {
		t.Fatalf("expected error to name %s, got %q", config.EnvDBDSN, err.Error())
	}
}
