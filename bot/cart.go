package bot

import (
	"context"
	"fmt"
	"time"

	"food-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// addToCart returns the toast shown on the tapped button.
func (b *Bot) addToCart(ctx context.Context, chatID, userID int64, itemID string) string {
	row, err := services.GetMenuItem(ctx, itemID)
	if err != nil {
		b.reportError(chatID, "get menu item", err)
		return ""
	}
	attrs := map[string]any{
		"category":    row.Category,
		"description": row.Description,
		"store_id":    row.StoreID,
	}
	if store, err := services.GetStore(ctx, row.StoreID); err == nil {
		attrs["restaurant"] = store.Name
	}

	item := services.CartItem{ID: row.ID, Name: row.Name, Price: row.Price, Attrs: attrs}
	if err := b.carts.For(userID).Add(ctx, item, 1); err != nil {
		b.reportError(chatID, "add to cart", err)
		return ""
	}
	log.WithFields(log.Fields{"user_id": userID, "item_id": itemID}).Debug("added to cart")
	return "Added " + row.Name
}

func (b *Bot) sendCart(ctx context.Context, chatID, userID int64) {
	lines, err := b.carts.For(userID).List(ctx)
	if err != nil {
		b.reportError(chatID, "list cart", err)
		return
	}
	if len(lines) == 0 {
		b.send(chatID, msgEmptyCart)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+lineName(l), "rm:"+l.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Checkout", "cart:checkout"),
		tgbotapi.NewInlineKeyboardButtonData("Clear", "cart:clear"),
	))
	b.sendWithInline(chatID, formatCart(lines), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) removeFromCart(ctx context.Context, chatID, userID int64, itemID string) {
	if err := b.carts.For(userID).Remove(ctx, itemID); err != nil {
		b.reportError(chatID, "remove from cart", err)
		return
	}
	b.sendCart(ctx, chatID, userID)
}

func (b *Bot) clearCart(ctx context.Context, chatID, userID int64) {
	if err := b.carts.For(userID).Clear(ctx); err != nil {
		b.reportError(chatID, "clear cart", err)
		return
	}
	b.send(chatID, msgEmptyCart)
}

func (b *Bot) checkout(ctx context.Context, chatID, userID int64) {
	cart := b.carts.For(userID)
	lines, err := cart.List(ctx)
	if err != nil {
		b.reportError(chatID, "checkout", err)
		return
	}
	restaurant := ""
	if len(lines) > 0 {
		restaurant, _ = lines[0].Attrs["restaurant"].(string)
	}

	order, err := services.PlaceOrder(ctx, b.store, userID, restaurant, cart, time.Now())
	if order == nil {
		b.reportError(chatID, "checkout", err)
		return
	}
	if err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("order placed but cart not cleared")
	}
	log.WithFields(log.Fields{"user_id": userID, "order_id": order.ID, "total": order.Total}).Info("order placed")
	b.send(chatID, fmt.Sprintf("✅ Order placed!\n\nTotal: %s", services.FormatPrice(order.Total)))
}

func (b *Bot) sendOrders(ctx context.Context, chatID, userID int64) {
	orders, err := services.ListPastOrders(ctx, b.store, userID)
	if err != nil {
		b.reportError(chatID, "list orders", err)
		return
	}
	if len(orders) == 0 {
		b.send(chatID, formatOrders(nil))
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Clear past orders", "orders:clear"),
	))
	b.sendWithInline(chatID, formatOrders(orders), kb)
}

func (b *Bot) clearOrders(ctx context.Context, chatID, userID int64) {
	if err := services.ClearPastOrders(ctx, b.store, userID); err != nil {
		b.reportError(chatID, "clear orders", err)
		return
	}
	b.send(chatID, formatOrders(nil))
}
