package bot

import (
	"context"
	"errors"
	"fmt"

	"food-storefront/models"
	"food-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func storeButtons(stores []models.Store) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range stores {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Name, fmt.Sprintf("store:%d", s.ID)),
		))
	}
	return rows
}

func (b *Bot) sendStores(ctx context.Context, chatID int64, page int) {
	stores, err := services.ListStores(ctx)
	if err != nil {
		b.reportError(chatID, "list stores", err)
		return
	}
	pages := services.GroupStores(stores, storesPerPage)
	if len(pages) == 0 {
		b.send(chatID, msgNoStores)
		return
	}
	if page < 0 || page >= len(pages) {
		page = 0
	}

	rows := storeButtons(pages[page])
	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("stores:page:%d", page-1)))
	}
	if page < len(pages)-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("stores:page:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	b.sendWithInline(chatID, formatStoresPage(pages[page], page, len(pages)), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) {
	if query == "" {
		b.send(chatID, "Usage: /search <restaurant name>")
		return
	}
	stores, err := services.ListStores(ctx)
	if err != nil {
		b.reportError(chatID, "search stores", err)
		return
	}
	found := services.SearchStores(stores, query)
	if len(found) == 0 {
		b.send(chatID, msgNoStores)
		return
	}
	b.sendWithInline(chatID, fmt.Sprintf("Search results for %q:", query), tgbotapi.NewInlineKeyboardMarkup(storeButtons(found)...))
}

func (b *Bot) handleUserLocation(ctx context.Context, chatID, userID int64, lat, lon float64) {
	b.userCoordsMu.Lock()
	b.userCoords[userID] = coords{Lat: lat, Lon: lon}
	b.userCoordsMu.Unlock()
	b.sendNearby(ctx, chatID, userID)
}

func (b *Bot) sendNearby(ctx context.Context, chatID, userID int64) {
	b.userCoordsMu.RLock()
	c, ok := b.userCoords[userID]
	b.userCoordsMu.RUnlock()
	if !ok {
		b.send(chatID, msgShareLoc)
		return
	}

	stores, err := services.ListStoresWithCoords(ctx)
	if err != nil {
		b.reportError(chatID, "nearby stores", err)
		return
	}
	sorted := services.SortStoresByDistance(c.Lat, c.Lon, stores)
	if len(sorted) == 0 {
		b.send(chatID, msgNoStores)
		return
	}
	if len(sorted) > nearbyCount {
		sorted = sorted[:nearbyCount]
	}
	nearest := make([]models.Store, len(sorted))
	for i, s := range sorted {
		nearest[i] = s.Store
	}
	b.sendWithInline(chatID, formatNearby(sorted), tgbotapi.NewInlineKeyboardMarkup(storeButtons(nearest)...))
}

func (b *Bot) sendMenu(ctx context.Context, chatID, userID int64, storeID int64) {
	store, err := services.GetStore(ctx, storeID)
	if err != nil {
		b.reportError(chatID, "get store", err)
		return
	}
	sections, err := services.LoadMenuSections(ctx, storeID)
	if err != nil && !errors.Is(err, services.ErrNoRows) {
		b.reportError(chatID, "load menu", err)
		return
	}
	if len(sections) == 0 {
		b.send(chatID, store.Name+"\n\n"+msgNoMenu)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sec := range sections {
		for _, r := range sec.Rows {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➕ %s — %s", r.Name, services.FormatPrice(r.Price)), "add:"+r.ID),
			))
		}
	}
	count, err := b.carts.For(userID).Count(ctx)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("cart badge")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🛒 Cart (%d)", count), "cart"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Restaurants", "stores:page:0"),
	))
	b.sendWithInline(chatID, formatMenu(*store, sections), tgbotapi.NewInlineKeyboardMarkup(rows...))
}
