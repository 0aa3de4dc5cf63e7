package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

func infoEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: description}
}

func titledEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description}
}

func dealEmbed(title string, deal decimal.Decimal, shop, emoji string) *discordgo.MessageEmbed {
	return titledEmbed(title, fmt.Sprintf(
		"Current best price: $%s at %s.\nReact with %s to add the game to your wishlist.",
		formatPrice(deal), shop, emoji,
	))
}

func noDealEmbed(title string, regular decimal.Decimal, shop, emoji string) *discordgo.MessageEmbed {
	return titledEmbed(title, fmt.Sprintf(
		"There are currently no deals on %s.\nRegular price: $%s from %s\nReact with %s to add the game to your wishlist.",
		title, formatPrice(regular), shop, emoji,
	))
}

func wishlistEmbed(username string, titles []string) *discordgo.MessageEmbed {
	displayName := strings.ReplaceAll(username, "_", " ")
	return titledEmbed(displayName+"'s Wishlist", strings.Join(titles, "\n"))
}

func formatPrice(value decimal.Decimal) string {
	return value.StringFixed(2)
}
