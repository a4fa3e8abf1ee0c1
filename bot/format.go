package bot

import (
	"fmt"
	"strconv"
	"strings"

	"food-storefront/models"
	"food-storefront/services"
)

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func atoi64Or(s string, def int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func formatMenu(store models.Store, sections []models.MenuSection) string {
	var sb strings.Builder
	sb.WriteString("🍽 " + store.Name)
	if store.Description != "" {
		sb.WriteString("\n" + store.Description)
	}
	for _, sec := range sections {
		sb.WriteString("\n\n▪️ " + sec.Title)
		for _, r := range sec.Rows {
			fmt.Fprintf(&sb, "\n• %s — %s", r.Name, services.FormatPrice(r.Price))
			if r.Description != "" {
				sb.WriteString("\n   " + r.Description)
			}
		}
	}
	return sb.String()
}

func formatCart(lines []services.CartLine) string {
	if len(lines) == 0 {
		return msgEmptyCart
	}
	var sb strings.Builder
	sb.WriteString("🛒 Cart:\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "• %s × %d — %s\n", lineName(l), l.Quantity, services.FormatPrice(l.Subtotal()))
	}
	fmt.Fprintf(&sb, "\nTotal: %s", services.FormatPrice(services.CartTotal(lines)))
	return sb.String()
}

func lineName(l services.CartLine) string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

func formatStoresPage(stores []models.Store, page, pages int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Restaurants (page %d/%d):\n", page+1, pages)
	for _, s := range stores {
		fmt.Fprintf(&sb, "\n• %s", s.Name)
		if s.Rating > 0 {
			fmt.Fprintf(&sb, " ⭐ %.1f", s.Rating)
		}
		if s.Category != "" {
			sb.WriteString(" · " + s.Category)
		}
	}
	return sb.String()
}

func formatCard(item models.FeedItem, remaining int) string {
	var sb strings.Builder
	sb.WriteString(item.Name)
	if item.Rating > 0 {
		fmt.Fprintf(&sb, "\n⭐ %.1f", item.Rating)
	}
	if item.Description != "" {
		sb.WriteString("\n" + item.Description)
	}
	if remaining > 1 {
		fmt.Fprintf(&sb, "\n\n%d more to swipe", remaining-1)
	}
	return sb.String()
}

func formatNearby(stores []services.StoreWithDistance) string {
	var sb strings.Builder
	sb.WriteString("📍 Nearest restaurants:")
	for _, s := range stores {
		fmt.Fprintf(&sb, "\n• %s — %.2f km", s.Store.Name, s.Distance)
	}
	return sb.String()
}

func formatOrders(orders []models.PastOrder) string {
	if len(orders) == 0 {
		return "No past orders found."
	}
	var sb strings.Builder
	sb.WriteString("Past orders:")
	for _, o := range orders {
		fmt.Fprintf(&sb, "\n\n%s · %s\n%s\nTotal: %s", o.Restaurant, o.Date, strings.Join(o.Items, ", "), services.FormatPrice(o.Total))
	}
	return sb.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatSettings(s models.Settings) string {
	return fmt.Sprintf("⚙️ Settings\n\nDark mode: %s\nNotifications: %s", onOff(s.DarkMode), onOff(s.Notifications))
}
