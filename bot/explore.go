package bot

import (
	"context"
	"fmt"

	"food-storefront/models"
	"food-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) sendCategories(chatID int64) {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range models.StoreCategories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c, "cat:"+c))
	}
	b.sendWithInline(chatID, "Select a category to see restaurants", tgbotapi.NewInlineKeyboardMarkup(row))
}

func (b *Bot) selectCategory(ctx context.Context, chatID, userID int64, category string) {
	if category == "" {
		b.sendCategories(chatID)
		return
	}
	feed := b.feeds.For(userID)
	if err := feed.SelectCategory(ctx, category); err != nil {
		b.reportError(chatID, "select category", err)
		return
	}
	b.sendTopCard(chatID, feed)
}

// sendTopCard shows the first candidate with like/dislike buttons. The buttons
// carry the store id so a tap on an old card can be recognized as stale.
func (b *Bot) sendTopCard(chatID int64, feed *services.Feed) {
	cards := feed.Candidates()
	if feed.State() != services.FeedReady || len(cards) == 0 {
		b.sendWithInline(chatID, "No more restaurants available.", tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Pick another category", "cat:")),
		))
		return
	}
	top := cards[0]
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("👎", fmt.Sprintf("nope:%d", top.ID)),
		tgbotapi.NewInlineKeyboardButtonData("👍", fmt.Sprintf("like:%d", top.ID)),
	))
	if top.Image != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(top.Image))
		photo.Caption = formatCard(top, len(cards))
		photo.ReplyMarkup = kb
		if _, err := b.api.Send(photo); err == nil {
			return
		}
	}
	b.sendWithInline(chatID, formatCard(top, len(cards)), kb)
}

func candidateIndex(cards []models.FeedItem, id int64) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// decide applies a swipe on the card with storeID. Accepting opens the menu;
// rejecting tops the deck up with a fresh candidate.
func (b *Bot) decide(ctx context.Context, chatID, userID, storeID int64, accept bool) {
	feed := b.feeds.For(userID)
	idx := candidateIndex(feed.Candidates(), storeID)

	if accept {
		sig, ok := feed.Accept(idx)
		if !ok {
			return
		}
		log.WithFields(log.Fields{"user_id": userID, "store_id": sig.ID}).Debug("feed accept")
		b.sendMenu(ctx, chatID, userID, sig.ID)
		return
	}

	if !feed.Reject(idx) {
		return
	}
	if _, err := feed.Replenish(ctx); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("replenish feed")
	}
	b.sendTopCard(chatID, feed)
}
