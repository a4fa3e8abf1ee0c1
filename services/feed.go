package services

import (
	"context"
	"math/rand"
	"sync"

	"food-storefront/metrics"
	"food-storefront/models"
)

// CandidateFetcher loads discovery candidates for a category.
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context, category string, limit int) ([]models.FeedItem, error)
}

type FeedState int

const (
	FeedEmpty FeedState = iota
	FeedLoading
	FeedReady
)

func (s FeedState) String() string {
	switch s {
	case FeedLoading:
		return "loading"
	case FeedReady:
		return "ready"
	default:
		return "empty"
	}
}

// Feed is the swipe deck for one user. The fetch runs outside the lock; a
// result that arrives after a newer SelectCategory is discarded.
type Feed struct {
	fetcher CandidateFetcher
	limit   int
	rng     *rand.Rand // nil keeps fetch order

	mu         sync.Mutex
	state      FeedState
	category   string
	generation uint64
	candidates []models.FeedItem
	seen       map[int64]bool // ids offered since the category was selected
}

func NewFeed(fetcher CandidateFetcher, limit int, rng *rand.Rand) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{fetcher: fetcher, limit: limit, rng: rng}
}

// SelectCategory discards the current deck and loads candidates for category.
func (f *Feed) SelectCategory(ctx context.Context, category string) error {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.state = FeedLoading
	f.category = category
	f.candidates = nil
	f.seen = make(map[int64]bool)
	f.mu.Unlock()

	items, err := f.fetcher.FetchCandidates(ctx, category, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return nil
	}
	if err != nil {
		f.state = FeedEmpty
		metrics.FetchErrors.WithLabelValues("stores").Inc()
		return &FetchError{Resource: "stores", Err: err}
	}

	deck := make([]models.FeedItem, 0, len(items))
	for _, it := range items {
		if f.seen[it.ID] {
			continue
		}
		f.seen[it.ID] = true
		deck = append(deck, it)
	}
	if f.rng != nil {
		f.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	}
	f.candidates = deck
	if len(deck) == 0 {
		f.state = FeedEmpty
	} else {
		f.state = FeedReady
	}
	return nil
}

// take removes the candidate at index. Caller holds mu.
func (f *Feed) take(index int) (models.FeedItem, bool) {
	if f.state != FeedReady || index < 0 || index >= len(f.candidates) {
		return models.FeedItem{}, false
	}
	item := f.candidates[index]
	next := make([]models.FeedItem, 0, len(f.candidates)-1)
	next = append(next, f.candidates[:index]...)
	next = append(next, f.candidates[index+1:]...)
	f.candidates = next
	if len(next) == 0 {
		f.state = FeedEmpty
	}
	return item, true
}

// Reject drops the candidate at index. A stale index is ignored and reported as false.
func (f *Feed) Reject(index int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.take(index)
	if ok {
		metrics.FeedDecisions.WithLabelValues("reject").Inc()
	}
	return ok
}

// Accept drops the candidate at index and returns the signal that opens its
// menu. The feed does not navigate itself.
func (f *Feed) Accept(index int) (models.NavigationSignal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.take(index)
	if !ok {
		return models.NavigationSignal{}, false
	}
	metrics.FeedDecisions.WithLabelValues("accept").Inc()
	return models.NavigationSignal{ID: item.ID, Name: item.Name, Image: item.Image}, true
}

// Replenish appends one candidate of the current category that has not been
// offered yet. It returns whether a candidate was added.
func (f *Feed) Replenish(ctx context.Context) (bool, error) {
	f.mu.Lock()
	category, gen := f.category, f.generation
	idle := category == "" || f.state == FeedLoading
	f.mu.Unlock()
	if idle {
		return false, nil
	}

	items, err := f.fetcher.FetchCandidates(ctx, category, f.limit)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("stores").Inc()
		return false, &FetchError{Resource: "stores", Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return false, nil
	}
	for _, it := range items {
		if f.seen[it.ID] {
			continue
		}
		f.seen[it.ID] = true
		f.candidates = append(f.candidates, it)
		f.state = FeedReady
		return true, nil
	}
	return false, nil
}

// Candidates returns a copy of the working set, top card first.
func (f *Feed) Candidates() []models.FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FeedItem, len(f.candidates))
	copy(out, f.candidates)
	return out
}

func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Feed) Category() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.category
}

// FeedRegistry keeps one Feed per user.
type FeedRegistry struct {
	fetcher CandidateFetcher
	limit   int
	newRand func() *rand.Rand

	mu    sync.Mutex
	feeds map[int64]*Feed
}

func NewFeedRegistry(fetcher CandidateFetcher, limit int, newRand func() *rand.Rand) *FeedRegistry {
	return &FeedRegistry{fetcher: fetcher, limit: limit, newRand: newRand, feeds: make(map[int64]*Feed)}
}

func (r *FeedRegistry) For(userID int64) *Feed {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.feeds[userID]
	if !ok {
		var rng *rand.Rand
		if r.newRand != nil {
			rng = r.newRand()
		}
		f = NewFeed(r.fetcher, r.limit, rng)
		r.feeds[userID] = f
	}
	return f
}
