package bot

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	storeapi "github.com/gamewishlabs/gamewish-backend/internal/sync"
	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

type fakeSession struct {
	mu      sync.Mutex
	nextID  int
	sent    []string
	embeds  []*discordgo.MessageEmbed
	edits   []*discordgo.MessageEmbed
	deleted []string
	perms   int64
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	f.nextID++
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.nextID)}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	f.nextID++
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.nextID)}, nil
}

func (f *fakeSession) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, embed)
	return &discordgo.Message{ID: messageID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return f.perms, nil
}

func (f *fakeSession) lastEdit() *discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

func (f *fakeSession) lastEmbed() *discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.embeds) == 0 {
		return nil
	}
	return f.embeds[len(f.embeds)-1]
}

type stubPrices struct {
	game       pricing.Game
	resolveErr error
	quote      pricing.Quote
	priceErr   error
}

func (s *stubPrices) Resolve(ctx context.Context, title string) (pricing.Game, error) {
	return s.game, s.resolveErr
}

func (s *stubPrices) CurrentPrice(ctx context.Context, gameID string) (pricing.Quote, error) {
	return s.quote, s.priceErr
}

type stubStore struct {
	wishlist  storeapi.WishlistView
	getErr    error
	added     []string
	removed   []string
	addErr    error
	removeErr error
}

func (s *stubStore) GetWishlist(ctx context.Context, userID string) (storeapi.WishlistView, error) {
	return s.wishlist, s.getErr
}

func (s *stubStore) AddGame(ctx context.Context, userID, username, name string) (storeapi.WishlistView, error) {
	s.added = append(s.added, name)
	return s.wishlist, s.addErr
}

func (s *stubStore) RemoveGame(ctx context.Context, userID, name string) (storeapi.WishlistView, error) {
	s.removed = append(s.removed, name)
	return s.wishlist, s.removeErr
}

func newTestBot(t *testing.T, prices PriceService, store StoreService) (*Bot, *TrackingStore) {
	t.Helper()
	tracking := NewTrackingStore(filepath.Join(t.TempDir(), "data.json"))
	cfg := config.BotConfig{
		Prefix:        "!",
		ReactionEmoji: "👀",
		ReactionWait:  100 * time.Millisecond,
	}
	b, err := New(Params{
		Config:   cfg,
		Prices:   prices,
		Store:    store,
		Tracking: tracking,
		Logger:   logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)
	return b, tracking
}

// react keeps replaying the reaction event until the command handler
// returns, since the handler registers its wait only after editing the
// priced embed.
func react(done <-chan struct{}, b *Bot, messageID, userID string) {
	for {
		b.HandleReactionAdd(&discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     discordgo.Emoji{Name: "👀"},
		}})
		select {
		case <-done:
			return
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func message(userID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "origin",
		ChannelID: "chan-1",
		Content:   content,
		Author:    &discordgo.User{ID: userID, Username: "tester"},
	}}
}

func TestIgnoresMessagesWithoutPrefix(t *testing.T) {
	session := &fakeSession{}
	b, _ := newTestBot(t, &stubPrices{}, &stubStore{})

	b.HandleMessage(context.Background(), session, message("42", "hello there"))

	assert.Empty(t, session.sent)
	assert.Empty(t, session.embeds)
}

func TestIgnoresBotAuthors(t *testing.T) {
	session := &fakeSession{}
	b, _ := newTestBot(t, &stubPrices{}, &stubStore{})

	m := message("42", "!wishlist")
	m.Author.Bot = true
	b.HandleMessage(context.Background(), session, m)

	assert.Empty(t, session.embeds)
}

func TestUnknownCommandHint(t *testing.T) {
	session := &fakeSession{}
	b, _ := newTestBot(t, &stubPrices{}, &stubStore{})

	b.HandleMessage(context.Background(), session, message("42", "!frobnicate"))

	require.Len(t, session.sent, 1)
	assert.Contains(t, session.sent[0], "Invalid command")
}

func TestItadUsageWhenNameMissing(t *testing.T) {
	session := &fakeSession{}
	b, _ := newTestBot(t, &stubPrices{}, &stubStore{})

	b.HandleMessage(context.Background(), session, message("42", "!itad"))

	require.Len(t, session.sent, 1)
	assert.Contains(t, session.sent[0], "Usage: !itad [name]")
}

func TestItadUnknownGame(t *testing.T) {
	session := &fakeSession{}
	prices := &stubPrices{resolveErr: pkgerrors.New(pkgerrors.CodeNotFound, "game could not be identified")}
	b, _ := newTestBot(t, prices, &stubStore{})

	b.HandleMessage(context.Background(), session, message("42", "!itad Portal 7"))

	require.Len(t, session.deleted, 1)
	last := session.lastEmbed()
	require.NotNil(t, last)
	assert.Contains(t, last.Description, "could not be identified")
}

func TestItadDealShownAndReactionAddsGame(t *testing.T) {
	session := &fakeSession{}
	prices := &stubPrices{
		game: pricing.Game{ID: "g-1", Title: "Portal 2"},
		quote: pricing.Quote{
			Deal:    decimal.RequireFromString("4.99"),
			Regular: decimal.RequireFromString("19.99"),
			Shop:    "Steam",
		},
	}
	store := &stubStore{}
	b, tracking := newTestBot(t, prices, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleMessage(context.Background(), session, message("42", "!itad portal 2"))
	}()

	// Feed the reaction once the priced embed is up.
	deadline := time.After(2 * time.Second)
	for {
		if edit := session.lastEdit(); edit != nil {
			assert.Equal(t, "Portal 2", edit.Title)
			assert.Contains(t, edit.Description, "Current best price: $4.99 at Steam")
			break
		}
		select {
		case <-deadline:
			t.Fatal("priced embed never appeared")
		case <-time.After(5 * time.Millisecond):
		}
	}
	react(done, b, "msg-1", "42")

	assert.Equal(t, []string{"Portal 2"}, store.added)
	assert.Equal(t, []string{"Portal 2"}, tracking.Titles())
	last := session.lastEmbed()
	require.NotNil(t, last)
	assert.Contains(t, last.Description, "has been added to your wishlist")
}

func TestItadReactionTimeoutAddsNothing(t *testing.T) {
	session := &fakeSession{}
	prices := &stubPrices{
		game: pricing.Game{ID: "g-1", Title: "Portal 2"},
		quote: pricing.Quote{
			Deal:    decimal.RequireFromString("19.99"),
			Regular: decimal.RequireFromString("19.99"),
			Shop:    "Steam",
		},
	}
	store := &stubStore{}
	b, _ := newTestBot(t, prices, store)

	b.HandleMessage(context.Background(), session, message("42", "!itad portal 2"))

	assert.Empty(t, store.added)
	edit := session.lastEdit()
	require.NotNil(t, edit)
	assert.Contains(t, edit.Description, "There are currently no deals on Portal 2")
}

func TestItadReactionFromOtherUserIgnored(t *testing.T) {
	session := &fakeSession{}
	prices := &stubPrices{
		game: pricing.Game{ID: "g-1", Title: "Portal 2"},
		quote: pricing.Quote{
			Deal:    decimal.RequireFromString("4.99"),
			Regular: decimal.RequireFromString("19.99"),
			Shop:    "Steam",
		},
	}
	store := &stubStore{}
	b, _ := newTestBot(t, prices, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleMessage(context.Background(), session, message("42", "!itad portal 2"))
	}()

	deadline := time.After(2 * time.Second)
	for session.lastEdit() == nil {
		select {
		case <-deadline:
			t.Fatal("priced embed never appeared")
		case <-time.After(5 * time.Millisecond):
		}
	}
	react(done, b, "msg-1", "99")

	assert.Empty(t, store.added)
}

func TestItadAlreadyWishlisted(t *testing.T) {
	session := &fakeSession{}
	prices := &stubPrices{
		game: pricing.Game{ID: "g-1", Title: "Portal 2"},
		quote: pricing.Quote{
			Deal:    decimal.RequireFromString("4.99"),
			Regular: decimal.RequireFromString("19.99"),
			Shop:    "Steam",
		},
	}
	store := &stubStore{wishlist: storeapi.WishlistView{
		UserID: "42",
		Games:  []storeapi.GameView{{Name: "Portal 2"}},
	}}
	b, _ := newTestBot(t, prices, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleMessage(context.Background(), session, message("42", "!itad portal 2"))
	}()

	deadline := time.After(2 * time.Second)
	for session.lastEdit() == nil {
		select {
		case <-deadline:
			t.Fatal("priced embed never appeared")
		case <-time.After(5 * time.Millisecond):
		}
	}
	react(done, b, "msg-1", "42")

	assert.Empty(t, store.added)
	last := session.lastEmbed()
	require.NotNil(t, last)
	assert.Contains(t, last.Description, "already being tracked for you")
}

func TestWishlistEmptyAndMissingLookTheSame(t *testing.T) {
	for name, store := range map[string]*stubStore{
		"missing": {getErr: pkgerrors.New(pkgerrors.CodeNotFound, "wishlist not found")},
		"empty":   {wishlist: storeapi.WishlistView{UserID: "42"}},
	} {
		t.Run(name, func(t *testing.T) {
			session := &fakeSession{}
			b, _ := newTestBot(t, &stubPrices{}, store)

			b.HandleMessage(context.Background(), session, message("42", "!wishlist"))

			edit := session.lastEdit()
			require.NotNil(t, edit)
			assert.Contains(t, edit.Description, "currently empty")
		})
	}
}

func TestWishlistListsGames(t *testing.T) {
	session := &fakeSession{}
	store := &stubStore{wishlist: storeapi.WishlistView{
		UserID:   "42",
		Username: "tester",
		Games:    []storeapi.GameView{{Name: "Portal 2"}, {Name: "Hades"}},
	}}
	b, _ := newTestBot(t, &stubPrices{}, store)

	b.HandleMessage(context.Background(), session, message("42", "!wishlist"))

	edit := session.lastEdit()
	require.NotNil(t, edit)
	assert.Equal(t, "tester's Wishlist", edit.Title)
	assert.True(t, strings.Contains(edit.Description, "Portal 2") && strings.Contains(edit.Description, "Hades"))
}

func TestUnwishNotTracked(t *testing.T) {
	session := &fakeSession{}
	store := &stubStore{wishlist: storeapi.WishlistView{UserID: "42"}}
	b, _ := newTestBot(t, &stubPrices{}, store)

	b.HandleMessage(context.Background(), session, message("42", "!unwish Portal 2"))

	assert.Empty(t, store.removed)
	edit := session.lastEdit()
	require.NotNil(t, edit)
	assert.Contains(t, edit.Description, "not currently being tracked")
}

func TestUnwishRemovesGame(t *testing.T) {
	session := &fakeSession{}
	store := &stubStore{wishlist: storeapi.WishlistView{
		UserID: "42",
		Games:  []storeapi.GameView{{Name: "Portal 2"}},
	}}
	b, _ := newTestBot(t, &stubPrices{}, store)

	b.HandleMessage(context.Background(), session, message("42", "!unwish Portal 2"))

	assert.Equal(t, []string{"Portal 2"}, store.removed)
	edit := session.lastEdit()
	require.NotNil(t, edit)
	assert.Contains(t, edit.Description, "has been removed from your wishlist")
}

func TestClearTrackingRequiresAdmin(t *testing.T) {
	session := &fakeSession{}
	b, tracking := newTestBot(t, &stubPrices{}, &stubStore{})
	tracking.Set("g-1", "Portal 2")

	b.HandleMessage(context.Background(), session, message("42", "!cwl"))
	assert.Equal(t, []string{"Portal 2"}, tracking.Titles())

	session.perms = discordgo.PermissionAdministrator
	b.HandleMessage(context.Background(), session, message("42", "!cwl"))
	assert.Empty(t, tracking.Titles())
}

func TestClearTrackingSingleGame(t *testing.T) {
	session := &fakeSession{perms: discordgo.PermissionAdministrator}
	b, tracking := newTestBot(t, &stubPrices{}, &stubStore{})
	tracking.Set("g-1", "Portal 2")
	tracking.Set("g-2", "Hades")

	b.HandleMessage(context.Background(), session, message("42", "!cwl Hades"))

	assert.Equal(t, []string{"Portal 2"}, tracking.Titles())
}

func TestTrackedListsLocalGames(t *testing.T) {
	session := &fakeSession{}
	b, tracking := newTestBot(t, &stubPrices{}, &stubStore{})
	tracking.Set("g-2", "Hades")

	b.HandleMessage(context.Background(), session, message("42", "!tracked"))

	last := session.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Currently tracked games:", last.Title)
	assert.Contains(t, last.Description, "Hades")
}
