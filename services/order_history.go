package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"food-storefront/kv"
	"food-storefront/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func OrdersKey(userID int64) string {
	return "orders:" + strconv.FormatInt(userID, 10)
}

// ListPastOrders returns the user's order history, newest first.
func ListPastOrders(ctx context.Context, store kv.Store, userID int64) ([]models.PastOrder, error) {
	key := OrdersKey(userID)
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	if !ok {
		return nil, nil
	}
	var orders []models.PastOrder
	if err := json.Unmarshal([]byte(v), &orders); err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	return orders, nil
}

func ClearPastOrders(ctx context.Context, store kv.Store, userID int64) error {
	key := OrdersKey(userID)
	if err := store.Remove(ctx, key); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// PlaceOrder records the cart as a past order and empties the cart. The order is
// written before the cart is cleared; if clearing fails the order is returned
// together with the error. An unreadable history is replaced by one holding only
// the new order.
func PlaceOrder(ctx context.Context, store kv.Store, userID int64, restaurant string, cart *CartStore, now time.Time) (*models.PastOrder, error) {
	lines, err := cart.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "cart", Reason: "empty"}
	}

	order := models.PastOrder{
		ID:         uuid.NewString(),
		Restaurant: restaurant,
		Total:      CartTotal(lines),
		Date:       now.Format("2006-01-02"),
	}
	for _, l := range lines {
		item := l.Name
		if item == "" {
			item = l.ID
		}
		if l.Quantity > 1 {
			item = fmt.Sprintf("%s x%d", item, l.Quantity)
		}
		order.Items = append(order.Items, item)
	}

	key := OrdersKey(userID)
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	var history []models.PastOrder
	if ok {
		if err := json.Unmarshal([]byte(v), &history); err != nil {
			log.WithError(err).WithField("key", key).Warn("unreadable order history, starting a new one")
			history = nil
		}
	}
	history = append([]models.PastOrder{order}, history...)
	b, err := json.Marshal(history)
	if err != nil {
		return nil, &StorageError{Op: "write", Key: key, Err: err}
	}
	if err := store.Set(ctx, key, string(b)); err != nil {
		return nil, &StorageError{Op: "write", Key: key, Err: err}
	}

	if err := cart.Clear(ctx); err != nil {
		return &order, err
	}
	return &order, nil
}
