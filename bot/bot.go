package bot

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"food-storefront/config"
	"food-storefront/kv"
	"food-storefront/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const (
	msgRetry      = "⚠️ Something went wrong. Please try again."
	msgEmptyCart  = "Your cart is empty."
	msgNoStores   = "No restaurants found."
	msgNoMenu     = "This restaurant has no menu yet."
	msgShareLoc   = "📍 Share your location to see nearby restaurants."
	storesPerPage = 5
	nearbyCount   = 5
)

type coords struct{ Lat, Lon float64 }

type Bot struct {
	api   *tgbotapi.BotAPI
	cfg   *config.Config
	store kv.Store
	carts *services.CartRegistry
	feeds *services.FeedRegistry

	userCoords   map[int64]coords
	userCoordsMu sync.RWMutex
}

func New(cfg *config.Config, store kv.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	newRand := func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	return &Bot{
		api:        api,
		cfg:        cfg,
		store:      store,
		carts:      services.NewCartRegistry(store),
		feeds:      services.NewFeedRegistry(services.Directory{}, cfg.Feed.Limit, newRand),
		userCoords: make(map[int64]coords),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Home"},
			{Command: "stores", Description: "Browse restaurants"},
			{Command: "search", Description: "Search restaurants by name"},
			{Command: "explore", Description: "Swipe to discover"},
			{Command: "cart", Description: "Your cart"},
			{Command: "orders", Description: "Order history"},
			{Command: "settings", Description: "Settings"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Start runs the update loop until the updates channel closes or ctx is done.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		log.WithError(err).Warn("set bot commands")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
			continue
		}
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if msg.Location != nil {
		b.handleUserLocation(ctx, chatID, userID, msg.Location.Latitude, msg.Location.Longitude)
		return
	}

	switch {
	case text == "/start":
		b.handleStart(chatID)
	case text == "/stores":
		b.sendStores(ctx, chatID, 0)
	case strings.HasPrefix(text, "/search"):
		b.handleSearch(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/search")))
	case text == "/nearby":
		b.sendNearby(ctx, chatID, userID)
	case text == "/explore":
		b.sendCategories(chatID)
	case text == "/cart":
		b.sendCart(ctx, chatID, userID)
	case text == "/orders":
		b.sendOrders(ctx, chatID, userID)
	case text == "/settings":
		b.sendSettings(ctx, chatID, userID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	toast := ""
	switch {
	case strings.HasPrefix(data, "stores:page:"):
		b.sendStores(ctx, chatID, atoiOr(strings.TrimPrefix(data, "stores:page:"), 0))
	case strings.HasPrefix(data, "store:"):
		b.sendMenu(ctx, chatID, userID, atoi64Or(strings.TrimPrefix(data, "store:"), 0))
	case strings.HasPrefix(data, "add:"):
		toast = b.addToCart(ctx, chatID, userID, strings.TrimPrefix(data, "add:"))
	case strings.HasPrefix(data, "rm:"):
		b.removeFromCart(ctx, chatID, userID, strings.TrimPrefix(data, "rm:"))
	case data == "cart":
		b.sendCart(ctx, chatID, userID)
	case data == "cart:clear":
		b.clearCart(ctx, chatID, userID)
	case data == "cart:checkout":
		b.checkout(ctx, chatID, userID)
	case data == "orders:clear":
		b.clearOrders(ctx, chatID, userID)
	case strings.HasPrefix(data, "cat:"):
		b.selectCategory(ctx, chatID, userID, strings.TrimPrefix(data, "cat:"))
	case strings.HasPrefix(data, "like:"):
		b.decide(ctx, chatID, userID, atoi64Or(strings.TrimPrefix(data, "like:"), 0), true)
	case strings.HasPrefix(data, "nope:"):
		b.decide(ctx, chatID, userID, atoi64Or(strings.TrimPrefix(data, "nope:"), 0), false)
	case data == "set:":
		b.sendSettings(ctx, chatID, userID)
	case data == "set:dark" || data == "set:notif":
		b.toggleSetting(ctx, chatID, userID, data)
	case data == "home":
		b.handleStart(chatID)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, toast)); err != nil {
		log.WithError(err).Debug("answer callback")
	}
}

func (b *Bot) handleStart(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽 Restaurants", "stores:page:0"),
			tgbotapi.NewInlineKeyboardButtonData("🔥 Explore", "cat:"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", "set:"),
		),
	)
	b.sendWithInline(chatID, "Welcome! What are you hungry for?\n\n"+msgShareLoc, kb)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("send")
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("send")
	}
}

// reportError turns a service error into a user message. Nothing here is fatal.
func (b *Bot) reportError(chatID int64, op string, err error) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNoRows):
		log.WithField("op", op).Debug(err)
		b.send(chatID, msgNoStores)
	case errors.As(err, &ve):
		log.WithField("op", op).WithError(err).Warn("rejected request")
		b.send(chatID, "⚠️ "+ve.Error())
	default:
		log.WithField("op", op).WithError(err).Error("request failed")
		b.send(chatID, msgRetry)
	}
}
