package bot

import (
	"context"

	"food-storefront/models"
	"food-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func settingsKeyboard(s models.Settings) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Dark mode: "+onOff(s.DarkMode), "set:dark")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Notifications: "+onOff(s.Notifications), "set:notif")),
	)
}

func (b *Bot) sendSettings(ctx context.Context, chatID, userID int64) {
	s, err := services.LoadSettings(ctx, b.store, userID)
	if err != nil {
		b.reportError(chatID, "load settings", err)
		return
	}
	b.sendWithInline(chatID, formatSettings(s), settingsKeyboard(s))
}

func (b *Bot) toggleSetting(ctx context.Context, chatID, userID int64, data string) {
	var s models.Settings
	var err error
	if data == "set:dark" {
		s, err = services.ToggleDarkMode(ctx, b.store, userID)
	} else {
		s, err = services.ToggleNotifications(ctx, b.store, userID)
	}
	if err != nil {
		b.reportError(chatID, "toggle setting", err)
		return
	}
	b.sendWithInline(chatID, formatSettings(s), settingsKeyboard(s))
}
