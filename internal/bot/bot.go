package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	storeapi "github.com/gamewishlabs/gamewish-backend/internal/sync"
	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

// Session is the slice of the Discord API the command handlers use.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// PriceService resolves game names and quotes current prices.
type PriceService interface {
	Resolve(ctx context.Context, title string) (pricing.Game, error)
	CurrentPrice(ctx context.Context, gameID string) (pricing.Quote, error)
}

// StoreService is the wishlist store API surface the bot depends on.
type StoreService interface {
	GetWishlist(ctx context.Context, userID string) (storeapi.WishlistView, error)
	AddGame(ctx context.Context, userID, username, name string) (storeapi.WishlistView, error)
	RemoveGame(ctx context.Context, userID, name string) (storeapi.WishlistView, error)
}

type Params struct {
	Config   config.BotConfig
	Prices   PriceService
	Store    StoreService
	Tracking *TrackingStore
	Logger   *logger.Logger
}

type Bot struct {
	cfg       config.BotConfig
	prices    PriceService
	store     StoreService
	tracking  *TrackingStore
	logg      *logger.Logger
	reactions *reactionRegistry
	stop      context.CancelFunc
}

func New(params Params) (*Bot, error) {
	if params.Prices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bot requires a price service")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bot requires a wishlist store client")
	}
	if params.Tracking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bot requires a tracking store")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bot requires a logger")
	}
	return &Bot{
		cfg:       params.Config,
		prices:    params.Prices,
		store:     params.Store,
		tracking:  params.Tracking,
		logg:      params.Logger,
		reactions: newReactionRegistry(),
	}, nil
}

// Start connects to the gateway and blocks until the context is
// cancelled or an admin issues a shutdown command.
func (b *Bot) Start(ctx context.Context) error {
	if b.cfg.Token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bot token is not configured")
	}

	session, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.stop = cancel

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.HandleMessage(ctx, s, m)
	})
	session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.HandleReactionAdd(r)
	})

	if err := session.Open(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open discord gateway")
	}
	b.logg.Info(ctx, "bot.connected")

	<-ctx.Done()

	if err := b.tracking.Save(); err != nil {
		b.logg.Error(context.Background(), "bot.tracking_save", err)
	}
	return session.Close()
}

// HandleMessage dispatches prefixed commands. Non-command chatter and
// other bots are ignored.
func (b *Bot) HandleMessage(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.cfg.Prefix) {
		return
	}

	name, args := splitCommand(strings.TrimPrefix(content, b.cfg.Prefix))
	if name == "" {
		return
	}

	ctx = b.logg.WithCommand(b.logg.WithUserID(ctx, m.Author.ID), name)
	defer func() {
		if rec := recover(); rec != nil {
			b.logg.Error(ctx, "bot.command_panic", fmt.Errorf("panic: %v", rec))
		}
	}()

	switch name {
	case "itad":
		b.handleItad(ctx, s, m, args)
	case "wishlist":
		b.handleWishlist(ctx, s, m)
	case "unwish":
		b.handleUnwish(ctx, s, m, args)
	case "tracked":
		b.handleTracked(ctx, s, m)
	case "cwl":
		b.handleClearTracking(ctx, s, m, args)
	case "shutdown":
		b.handleShutdown(ctx, s, m)
	case "help":
		b.handleHelp(ctx, s, m)
	default:
		b.send(ctx, s, m.ChannelID, fmt.Sprintf("```Invalid command. %shelp for a list of valid commands.```", b.cfg.Prefix))
	}
}

// HandleReactionAdd feeds gateway reaction events to pending waits.
func (b *Bot) HandleReactionAdd(event *discordgo.MessageReactionAdd) {
	b.reactions.Notify(event)
}

func (b *Bot) isAdmin(s Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func (b *Bot) send(ctx context.Context, s Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		b.logg.Error(ctx, "bot.send_message", err)
	}
}

func (b *Bot) sendEmbed(ctx context.Context, s Session, channelID string, embed *discordgo.MessageEmbed) *discordgo.Message {
	msg, err := s.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		b.logg.Error(ctx, "bot.send_embed", err)
		return nil
	}
	return msg
}

func (b *Bot) editEmbed(ctx context.Context, s Session, channelID, messageID string, embed *discordgo.MessageEmbed) {
	if _, err := s.ChannelMessageEditEmbed(channelID, messageID, embed); err != nil {
		b.logg.Error(ctx, "bot.edit_embed", err)
	}
}

func splitCommand(content string) (string, string) {
	parts := strings.SplitN(content, " ", 2)
	name := strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) == 1 {
		return name, ""
	}
	return name, strings.TrimSpace(parts[1])
}
