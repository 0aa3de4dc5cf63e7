package dealcheck

import (
	"context"
	"fmt"

	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	"github.com/gamewishlabs/gamewish-backend/internal/wishlist"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

type trackedLister interface {
	ListTracked(ctx context.Context) ([]wishlist.TrackedGame, error)
}

type priceLookup interface {
	Resolve(ctx context.Context, title string) (pricing.Game, error)
	CurrentPrice(ctx context.Context, gameID string) (pricing.Quote, error)
}

type DealScanJobParams struct {
	Logger  *logger.Logger
	Tracked trackedLister
	Prices  priceLookup
}

// NewDealScanJob builds the job that checks every wishlisted game for
// a current discount.
func NewDealScanJob(params DealScanJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tracked == nil {
		return nil, fmt.Errorf("tracked game source required")
	}
	if params.Prices == nil {
		return nil, fmt.Errorf("price lookup required")
	}
	return &dealScanJob{
		logg:    params.Logger,
		tracked: params.Tracked,
		prices:  params.Prices,
	}, nil
}

type dealScanJob struct {
	logg    *logger.Logger
	tracked trackedLister
	prices  priceLookup
}

func (j *dealScanJob) Name() string { return "deal-scan" }

// Run scans every tracked game. Per-game lookup failures are logged
// and skipped so one bad title cannot abort the whole cycle.
func (j *dealScanJob) Run(ctx context.Context) error {
	games, err := j.tracked.ListTracked(ctx)
	if err != nil {
		return fmt.Errorf("list tracked games: %w", err)
	}

	dealsFound := 0
	for _, tracked := range games {
		gameCtx := j.logg.WithGame(ctx, tracked.Name)

		game, err := j.prices.Resolve(gameCtx, tracked.Name)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				j.logg.Warn(gameCtx, "tracked game no longer resolves")
				continue
			}
			j.logg.Error(gameCtx, "resolve tracked game", err)
			continue
		}

		quote, err := j.prices.CurrentPrice(gameCtx, game.ID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			j.logg.Error(gameCtx, "price tracked game", err)
			continue
		}
		if !quote.IsDeal() {
			continue
		}

		dealsFound++
		dealCtx := j.logg.WithFields(gameCtx, map[string]any{
			"deal_price":    quote.Deal.String(),
			"regular_price": quote.Regular.String(),
			"shop":          quote.Shop,
			"owners":        len(tracked.Owners),
		})
		j.logg.Info(dealCtx, "deal found")
	}

	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"games_scanned": len(games),
		"deals_found":   dealsFound,
	})
	j.logg.Info(summaryCtx, "deal scan complete")
	return nil
}
