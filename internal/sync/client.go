package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"github.com/gamewishlabs/gamewish-backend/pkg/types"
)

// Client talks to the wishlist store API on behalf of the bot.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func NewClient(cfg config.StoreConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
	}
}

type GameView struct {
	Name string `json:"name"`
}

type WishlistView struct {
	UserID   string     `json:"userid"`
	Username string     `json:"username"`
	Games    []GameView `json:"games"`
}

// Contains reports whether the wishlist tracks a game under exactly
// this name. Matching is case sensitive.
func (w WishlistView) Contains(name string) bool {
	for _, game := range w.Games {
		if game.Name == name {
			return true
		}
	}
	return false
}

// GetWishlist fetches a user's wishlist. A missing wishlist is a
// CodeNotFound error.
func (c *Client) GetWishlist(ctx context.Context, userID string) (WishlistView, error) {
	var view WishlistView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/wishlist/%s/", userID), nil, &view)
	return view, err
}

// CreateWishlist registers a wishlist for a user.
func (c *Client) CreateWishlist(ctx context.Context, userID, username string) (WishlistView, error) {
	payload := map[string]string{"userid": userID, "username": username}
	var view WishlistView
	err := c.do(ctx, http.MethodPost, "/api/wishlist/", payload, &view)
	return view, err
}

// AddGame puts a game on a user's wishlist, creating the wishlist
// first if the user does not have one yet.
func (c *Client) AddGame(ctx context.Context, userID, username, name string) (WishlistView, error) {
	payload := map[string]string{"name": name}
	var view WishlistView
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/wishlist/%s/add_game/", userID), payload, &view)
	if err != nil && pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		if _, err := c.CreateWishlist(ctx, userID, username); err != nil {
			return WishlistView{}, err
		}
		err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/wishlist/%s/add_game/", userID), payload, &view)
	}
	return view, err
}

// RemoveGame takes a game off a user's wishlist.
func (c *Client) RemoveGame(ctx context.Context, userID, name string) (WishlistView, error) {
	payload := map[string]string{"name": name}
	var view WishlistView
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/wishlist/%s/remove_game/", userID), payload, &view)
	return view, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode store request")
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build store request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wishlist store unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode store response")
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode store payload")
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var envelope types.ErrorEnvelope
	message := ""
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		message = envelope.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		if message == "" {
			message = "wishlist not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case http.StatusBadRequest:
		if message == "" {
			message = "request rejected by wishlist store"
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case http.StatusConflict:
		if message == "" {
			message = "wishlist already exists"
		}
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	default:
		if message == "" {
			message = fmt.Sprintf("wishlist store returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	}
}
