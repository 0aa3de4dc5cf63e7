package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
)

// Client talks to the IsThereAnyDeal HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg config.ITADConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// Game is a resolved catalog entry. Title carries ITAD's canonical
// spelling, which can differ from the search term.
type Game struct {
	ID    string
	Title string
}

// Quote is the current best storefront price for a game.
type Quote struct {
	Deal    decimal.Decimal
	Regular decimal.Decimal
	Shop    string
}

// IsDeal reports whether the current price undercuts the regular price.
// Equal prices do not count.
func (q Quote) IsDeal() bool {
	return q.Deal.LessThan(q.Regular)
}

// flexID tolerates both string and numeric game ids on the wire.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type lookupResponse struct {
	Found bool `json:"found"`
	Game  struct {
		ID    flexID `json:"id"`
		Title string `json:"title"`
	} `json:"game"`
}

type overviewResponse struct {
	Prices []struct {
		Current *struct {
			Price struct {
				Amount decimal.Decimal `json:"amount"`
			} `json:"price"`
			Regular struct {
				Amount decimal.Decimal `json:"amount"`
			} `json:"regular"`
			Shop struct {
				Name string `json:"name"`
			} `json:"shop"`
		} `json:"current"`
	} `json:"prices"`
}

// Resolve looks up a game id and canonical title from a free-form name.
func (c *Client) Resolve(ctx context.Context, title string) (Game, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/games/lookup/v1?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Game{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build lookup request")
	}

	var body lookupResponse
	if err := c.do(req, &body); err != nil {
		return Game{}, err
	}
	if !body.Found {
		return Game{}, pkgerrors.New(pkgerrors.CodeNotFound, "game could not be identified from the provided name")
	}
	return Game{ID: string(body.Game.ID), Title: body.Game.Title}, nil
}

// CurrentPrice fetches the best current storefront price for a game id.
func (c *Client) CurrentPrice(ctx context.Context, gameID string) (Quote, error) {
	payload, err := json.Marshal([]string{gameID})
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode overview request")
	}

	query := url.Values{}
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/games/overview/v2?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build overview request")
	}
	req.Header.Set("Content-Type", "application/json")

	var body overviewResponse
	if err := c.do(req, &body); err != nil {
		return Quote{}, err
	}
	if len(body.Prices) == 0 || body.Prices[0].Current == nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, "no current price information for this game")
	}

	current := body.Prices[0].Current
	return Quote{
		Deal:    current.Price.Amount,
		Regular: current.Regular.Amount,
		Shop:    current.Shop.Name,
	}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("price service returned status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode price service response")
	}
	return nil
}
