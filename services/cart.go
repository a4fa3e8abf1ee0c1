package services

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"sync"

	"food-storefront/kv"
	"food-storefront/metrics"
)

// CartItem is what a screen hands to the cart: a menu row plus any extra
// attributes that should travel with the line.
type CartItem struct {
	ID    string
	Name  string
	Price float64
	Attrs map[string]any
}

// CartLine is one item-and-quantity record in a cart.
type CartLine struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
	Attrs    map[string]any // pass-through attributes, persisted alongside the known fields
}

// Subtotal is price times quantity, unrounded.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(l.Attrs)+4)
	for k, v := range l.Attrs {
		m[k] = v
	}
	m["id"] = l.ID
	m["name"] = l.Name
	m["price"] = l.Price
	m["quantity"] = l.Quantity
	return json.Marshal(m)
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = CartLine{Quantity: 1}
	for k, v := range raw {
		var err error
		switch k {
		case "id":
			l.ID, err = decodeID(v)
		case "name":
			err = json.Unmarshal(v, &l.Name)
		case "price":
			err = json.Unmarshal(v, &l.Price)
		case "quantity":
			err = json.Unmarshal(v, &l.Quantity)
		default:
			var attr any
			err = json.Unmarshal(v, &attr)
			if l.Attrs == nil {
				l.Attrs = make(map[string]any)
			}
			l.Attrs[k] = attr
		}
		if err != nil {
			return fmt.Errorf("cart line field %q: %w", k, err)
		}
	}
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	return nil
}

// decodeID accepts both string and numeric ids.
func decodeID(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// CartTotal returns the sum of price times quantity over lines.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// FormatPrice rounds to currency precision for display.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// addLine returns a copy of lines with quantity of item added.
func addLine(lines []CartLine, item CartItem, quantity int) []CartLine {
	next := cloneLines(lines)
	for i := range next {
		if next[i].ID == item.ID {
			next[i].Quantity += quantity
			return next
		}
	}
	return append(next, CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
		Attrs:    maps.Clone(item.Attrs),
	})
}

// removeLine returns a copy of lines without id, and whether it was present.
func removeLine(lines []CartLine, id string) ([]CartLine, bool) {
	next := make([]CartLine, 0, len(lines))
	found := false
	for _, l := range lines {
		if l.ID == id {
			found = true
			continue
		}
		next = append(next, l)
	}
	return next, found
}

// mergeLines folds duplicate ids (older blobs stored one entry per tap) into one line.
func mergeLines(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

func cloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		l.Attrs = maps.Clone(l.Attrs)
		out[i] = l
	}
	return out
}

func encodeCart(lines []CartLine) (string, error) {
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCart(s string) ([]CartLine, error) {
	var lines []CartLine
	if err := json.Unmarshal([]byte(s), &lines); err != nil {
		return nil, err
	}
	// Lines without an id cannot be addressed by Add or Remove.
	kept := lines[:0]
	for _, l := range lines {
		if l.ID != "" {
			kept = append(kept, l)
		}
	}
	return mergeLines(kept), nil
}

// CartStore owns one persisted cart. Mutations are serialized by mu, so a write
// always starts after the previous one finished. Writers in other processes
// sharing the same key are last-write-wins on the whole blob.
type CartStore struct {
	store kv.Store
	key   string

	mu     sync.Mutex
	loaded bool
	lines  []CartLine
}

func NewCartStore(store kv.Store, key string) *CartStore {
	return &CartStore{store: store, key: key}
}

// load reads the persisted cart once per session. Caller holds mu.
func (c *CartStore) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	v, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return &StorageError{Op: "read", Key: c.key, Err: err}
	}
	var lines []CartLine
	if ok && v != "" {
		lines, err = decodeCart(v)
		if err != nil {
			return &StorageError{Op: "read", Key: c.key, Err: err}
		}
	}
	c.lines = lines
	c.loaded = true
	return nil
}

// commit persists next and only then makes it the in-memory state. Caller holds mu.
func (c *CartStore) commit(ctx context.Context, next []CartLine) error {
	var err error
	if len(next) == 0 {
		err = c.store.Remove(ctx, c.key)
	} else {
		var blob string
		blob, err = encodeCart(next)
		if err == nil {
			err = c.store.Set(ctx, c.key, blob)
		}
	}
	if err != nil {
		// Force a re-read so the next call sees whatever storage actually holds.
		c.loaded = false
		return &StorageError{Op: "write", Key: c.key, Err: err}
	}
	c.lines = next
	return nil
}

// Add puts quantity of item into the cart, incrementing an existing line with
// the same id. A quantity below one counts as one.
func (c *CartStore) Add(ctx context.Context, item CartItem, quantity int) error {
	if item.ID == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return &ValidationError{Field: "price", Reason: "must be a finite number"}
	}
	if item.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return err
	}
	if err := c.commit(ctx, addLine(c.lines, item, quantity)); err != nil {
		return err
	}
	metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

// Remove deletes the line with id. Removing an absent id is a no-op.
func (c *CartStore) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return err
	}
	next, found := removeLine(c.lines, id)
	if !found {
		return nil
	}
	if err := c.commit(ctx, next); err != nil {
		return err
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

func (c *CartStore) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.commit(ctx, nil); err != nil {
		return err
	}
	c.loaded = true
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}

// List returns a copy of the current lines in insertion order.
func (c *CartStore) List(ctx context.Context) ([]CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return cloneLines(c.lines), nil
}

// Total is the unrounded sum of price times quantity.
func (c *CartStore) Total(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	return CartTotal(c.lines), nil
}

// Count is the number of units in the cart, for badges.
func (c *CartStore) Count(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n, nil
}

// CartRegistry hands out one CartStore per user so every screen of that user
// shares the same store and mutation queue.
type CartRegistry struct {
	store kv.Store

	mu    sync.Mutex
	carts map[int64]*CartStore
}

func NewCartRegistry(store kv.Store) *CartRegistry {
	return &CartRegistry{store: store, carts: make(map[int64]*CartStore)}
}

func CartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

func (r *CartRegistry) For(userID int64) *CartStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = NewCartStore(r.store, CartKey(userID))
		r.carts[userID] = c
	}
	return c
}
