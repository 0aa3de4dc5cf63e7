package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
)

const (
	msgServiceError       = "Service error. Try again later."
	msgPriceUnavailable   = "Unable to retrieve price information. Try again later."
	msgGameNotIdentified  = "Game could not be identified from the provided name. Double-check your spelling and try again."
	msgWishlistFetchError = "Unexpected error retrieving your wishlist."
)

// handleItad looks a game up by name, reports its current best price,
// and offers to wishlist the game via an emoji reaction.
func (b *Bot) handleItad(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) {
	if args == "" {
		b.send(ctx, s, m.ChannelID, fmt.Sprintf("```Usage: %sitad [name]```", b.cfg.Prefix))
		return
	}

	progress := b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(fmt.Sprintf("Searching for %s on IsThereAnyDeal...", args)))
	if progress == nil {
		return
	}

	game, err := b.prices.Resolve(ctx, args)
	if err != nil {
		b.deleteMessage(ctx, s, m.ChannelID, progress.ID)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(msgGameNotIdentified))
			return
		}
		b.logg.Error(ctx, "bot.itad_resolve", err)
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(msgServiceError))
		return
	}
	ctx = b.logg.WithGame(ctx, game.Title)

	quote, err := b.prices.CurrentPrice(ctx, game.ID)
	if err != nil {
		b.deleteMessage(ctx, s, m.ChannelID, progress.ID)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(msgPriceUnavailable))
			return
		}
		b.logg.Error(ctx, "bot.itad_price", err)
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(msgServiceError))
		return
	}

	if quote.IsDeal() {
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, dealEmbed(game.Title, quote.Deal, quote.Shop, b.cfg.ReactionEmoji))
	} else {
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, noDealEmbed(game.Title, quote.Regular, quote.Shop, b.cfg.ReactionEmoji))
	}

	key := reactionKey{MessageID: progress.ID, UserID: m.Author.ID, Emoji: b.cfg.ReactionEmoji}
	if !b.reactions.Wait(ctx, key, b.cfg.ReactionWait) {
		return
	}
	b.wishGame(ctx, s, m, game)
}

// wishGame adds a resolved game to the reacting user's wishlist.
func (b *Bot) wishGame(ctx context.Context, s Session, m *discordgo.MessageCreate, game pricing.Game) {
	userID := m.Author.ID
	wishlist, err := b.store.GetWishlist(ctx, userID)
	if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		b.logg.Error(ctx, "bot.wish_fetch", err)
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(msgWishlistFetchError))
		return
	}
	if wishlist.Contains(game.Title) {
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(fmt.Sprintf("%s is already being tracked for you.", game.Title)))
		return
	}

	if _, err := b.store.AddGame(ctx, userID, m.Author.Username, game.Title); err != nil {
		b.logg.Error(ctx, "bot.wish_add", err)
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed("Unexpected error adding game to your wishlist."))
		return
	}

	b.tracking.Set(game.ID, game.Title)
	if err := b.tracking.Save(); err != nil {
		b.logg.Error(ctx, "bot.tracking_save", err)
	}
	b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(fmt.Sprintf(
		"%s has been added to your wishlist and you will be notified whenever the game goes on sale anywhere.", game.Title)))
}

// handleWishlist shows the caller's wishlist from the store API.
func (b *Bot) handleWishlist(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	progress := b.sendEmbed(ctx, s, m.ChannelID, infoEmbed("Retrieving your wishlist..."))
	if progress == nil {
		return
	}

	wishlist, err := b.store.GetWishlist(ctx, m.Author.ID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed("Your wishlist is currently empty."))
			return
		}
		b.logg.Error(ctx, "bot.wishlist_fetch", err)
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed(msgWishlistFetchError))
		return
	}
	if len(wishlist.Games) == 0 {
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed("Your wishlist is currently empty."))
		return
	}

	titles := make([]string, 0, len(wishlist.Games))
	for _, game := range wishlist.Games {
		titles = append(titles, game.Name)
	}
	b.editEmbed(ctx, s, m.ChannelID, progress.ID, wishlistEmbed(m.Author.Username, titles))
}

// handleUnwish removes a game from the caller's wishlist.
func (b *Bot) handleUnwish(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) {
	if args == "" {
		b.send(ctx, s, m.ChannelID, fmt.Sprintf("```Usage: %sunwish [game name]```", b.cfg.Prefix))
		return
	}
	ctx = b.logg.WithGame(ctx, args)

	progress := b.sendEmbed(ctx, s, m.ChannelID, infoEmbed(fmt.Sprintf("Removing %s from your wishlist...", args)))
	if progress == nil {
		return
	}

	wishlist, err := b.store.GetWishlist(ctx, m.Author.ID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed(fmt.Sprintf("%s is not currently being tracked for you.", args)))
			return
		}
		b.logg.Error(ctx, "bot.unwish_fetch", err)
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed(msgWishlistFetchError))
		return
	}
	if !wishlist.Contains(args) {
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed(fmt.Sprintf("%s is not currently being tracked for you.", args)))
		return
	}

	if _, err := b.store.RemoveGame(ctx, m.Author.ID, args); err != nil {
		b.logg.Error(ctx, "bot.unwish_remove", err)
		b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed("Unexpected error removing game from your wishlist."))
		return
	}
	b.editEmbed(ctx, s, m.ChannelID, progress.ID, infoEmbed(fmt.Sprintf("%s has been removed from your wishlist.", args)))
}

// handleTracked lists the games the bot currently tracks locally.
func (b *Bot) handleTracked(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	titles := b.tracking.Titles()
	if len(titles) == 0 {
		b.sendEmbed(ctx, s, m.ChannelID, infoEmbed("Bot is currently not tracking any games."))
		return
	}
	b.sendEmbed(ctx, s, m.ChannelID, titledEmbed("Currently tracked games:", strings.Join(titles, "\n")))
}

// handleClearTracking drops the whole local tracking list, or a single
// game when a name is given. Admin only.
func (b *Bot) handleClearTracking(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) {
	if !b.isAdmin(s, m) {
		return
	}
	b.logg.Info(ctx, "bot.clear_tracking")

	if args == "" {
		b.tracking.Clear()
	} else if !b.tracking.RemoveByTitle(args) {
		b.logg.Info(ctx, "bot.clear_tracking_miss")
		return
	}
	if err := b.tracking.Save(); err != nil {
		b.logg.Error(ctx, "bot.tracking_save", err)
	}
}

// handleShutdown saves state and stops the bot. Admin only.
func (b *Bot) handleShutdown(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	if !b.isAdmin(s, m) {
		return
	}
	b.logg.Info(ctx, "bot.shutdown_requested")

	if err := b.tracking.Save(); err != nil {
		b.logg.Error(ctx, "bot.tracking_save", err)
	}
	if b.stop != nil {
		b.stop()
	}
}

func (b *Bot) handleHelp(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	p := b.cfg.Prefix
	lines := []string{
		fmt.Sprintf("%sitad [name]    Look up the current best price for a game.", p),
		fmt.Sprintf("%swishlist       Show your wishlist.", p),
		fmt.Sprintf("%sunwish [name]  Remove a game from your wishlist.", p),
		fmt.Sprintf("%stracked        List games the bot is tracking.", p),
	}
	b.send(ctx, s, m.ChannelID, "```"+strings.Join(lines, "\n")+"```")
}

func (b *Bot) deleteMessage(ctx context.Context, s Session, channelID, messageID string) {
	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		b.logg.Error(ctx, "bot.delete_message", err)
	}
}
