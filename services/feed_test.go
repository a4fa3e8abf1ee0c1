package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"food-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	byCategory map[string][]models.FeedItem
	err        error
	calls      int
	before     func() // runs inside FetchCandidates, used to interleave selections
}

func (s *stubFetcher) FetchCandidates(_ context.Context, category string, limit int) ([]models.FeedItem, error) {
	s.calls++
	if s.before != nil {
		s.before()
	}
	if s.err != nil {
		return nil, s.err
	}
	items := s.byCategory[category]
	if len(items) > limit {
		items = items[:limit]
	}
	return append([]models.FeedItem(nil), items...), nil
}

func items(names ...string) []models.FeedItem {
	out := make([]models.FeedItem, len(names))
	for i, n := range names {
		out[i] = models.FeedItem{ID: int64(i + 1), Name: n}
	}
	return out
}

func names(items []models.FeedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestFeed_InitialStateEmpty(t *testing.T) {
	f := NewFeed(&stubFetcher{}, 10, nil)
	assert.Equal(t, FeedEmpty, f.State())
	assert.False(t, f.Reject(0))
	_, ok := f.Accept(0)
	assert.False(t, ok)
}

func TestFeed_RejectScenario(t *testing.T) {
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": items("X", "Y", "Z")}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	require.Equal(t, FeedReady, f.State())

	assert.True(t, f.Reject(1))
	assert.Equal(t, []string{"X", "Z"}, names(f.Candidates()))
	assert.Equal(t, FeedReady, f.State())
}

func TestFeed_StaleRejectIsNoop(t *testing.T) {
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": items("X", "Y")}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))

	assert.True(t, f.Reject(1))
	assert.False(t, f.Reject(1), "index 1 no longer exists")
	assert.False(t, f.Reject(-1))
	assert.Equal(t, []string{"X"}, names(f.Candidates()))
	assert.Equal(t, FeedReady, f.State())
}

func TestFeed_ExhaustedBecomesEmpty(t *testing.T) {
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": items("X", "Y")}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))

	assert.True(t, f.Reject(0))
	_, ok := f.Accept(0)
	assert.True(t, ok)
	assert.Equal(t, FeedEmpty, f.State())
	assert.Empty(t, f.Candidates())
	assert.False(t, f.Reject(0))
}

func TestFeed_AcceptEmitsSignal(t *testing.T) {
	deck := []models.FeedItem{
		{ID: 10, Name: "KFC", Image: "kfc.png"},
		{ID: 11, Name: "Subway", Image: "subway.png"},
	}
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{"Fast Food": deck}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Fast Food"))

	sig, ok := f.Accept(1)
	require.True(t, ok)
	assert.Equal(t, models.NavigationSignal{ID: 11, Name: "Subway", Image: "subway.png"}, sig)
	assert.Equal(t, []string{"KFC"}, names(f.Candidates()))

	_, ok = f.Accept(1)
	assert.False(t, ok, "stale accept must not emit")
}

func TestFeed_SelectEmptyResult(t *testing.T) {
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	assert.Equal(t, FeedEmpty, f.State())
	assert.Equal(t, "Cafe", f.Category())
}

func TestFeed_SelectFetchError(t *testing.T) {
	boom := errors.New("network down")
	f := NewFeed(&stubFetcher{err: boom}, 10, nil)

	err := f.SelectCategory(context.Background(), "Cafe")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FeedEmpty, f.State())
}

func TestFeed_NewCategoryDiscardsCandidates(t *testing.T) {
	fetcher := &stubFetcher{byCategory: map[string][]models.FeedItem{
		"Cafe":       items("X", "Y"),
		"Restaurant": {{ID: 20, Name: "R"}},
	}}
	f := NewFeed(fetcher, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	require.NoError(t, f.SelectCategory(context.Background(), "Restaurant"))

	assert.Equal(t, []string{"R"}, names(f.Candidates()))
	assert.Equal(t, "Restaurant", f.Category())
}

func TestFeed_SupersededFetchIsDropped(t *testing.T) {
	fetcher := &stubFetcher{byCategory: map[string][]models.FeedItem{
		"Cafe":       items("X", "Y"),
		"Restaurant": {{ID: 20, Name: "R"}},
	}}
	f := NewFeed(fetcher, 10, nil)

	// While the Cafe fetch is in flight, the user picks Restaurant.
	fetcher.before = func() {
		fetcher.before = nil
		require.NoError(t, f.SelectCategory(context.Background(), "Restaurant"))
	}
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))

	assert.Equal(t, "Restaurant", f.Category())
	assert.Equal(t, []string{"R"}, names(f.Candidates()))
}

func TestFeed_NoDuplicatedCandidates(t *testing.T) {
	dup := []models.FeedItem{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 1, Name: "A"}}
	f := NewFeed(&stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": dup}}, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	assert.Len(t, f.Candidates(), 2)
}

func TestFeed_ShuffleIsDeterministicWithSeed(t *testing.T) {
	deck := items("A", "B", "C", "D", "E", "F", "G", "H")
	fetcher := &stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": deck}}

	a := NewFeed(fetcher, 50, rand.New(rand.NewSource(42)))
	b := NewFeed(fetcher, 50, rand.New(rand.NewSource(42)))
	require.NoError(t, a.SelectCategory(context.Background(), "Cafe"))
	require.NoError(t, b.SelectCategory(context.Background(), "Cafe"))

	assert.Equal(t, names(a.Candidates()), names(b.Candidates()))
	assert.ElementsMatch(t, names(deck), names(a.Candidates()))
}

func TestFeed_ReplenishAddsUnseenCandidate(t *testing.T) {
	fetcher := &stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": items("X", "Y", "Z")}}
	f := NewFeed(fetcher, 2, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	require.Equal(t, []string{"X", "Y"}, names(f.Candidates()))

	// Replenish fetches with the same limit, so only X and Y come back: both seen.
	assert.True(t, f.Reject(0))
	added, err := f.Replenish(context.Background())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{"Y"}, names(f.Candidates()))

	fetcher.byCategory["Cafe"] = append(items("X", "Y"), models.FeedItem{ID: 9, Name: "W"})
	f.limit = 10
	added, err = f.Replenish(context.Background())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"Y", "W"}, names(f.Candidates()))
}

func TestFeed_ReplenishRevivesExhaustedDeck(t *testing.T) {
	fetcher := &stubFetcher{byCategory: map[string][]models.FeedItem{"Cafe": items("X")}}
	f := NewFeed(fetcher, 10, nil)
	require.NoError(t, f.SelectCategory(context.Background(), "Cafe"))
	require.True(t, f.Reject(0))
	require.Equal(t, FeedEmpty, f.State())

	fetcher.byCategory["Cafe"] = append(items("X"), models.FeedItem{ID: 5, Name: "V"})
	added, err := f.Replenish(context.Background())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, FeedReady, f.State())
}

func TestFeed_ReplenishWithoutCategory(t *testing.T) {
	fetcher := &stubFetcher{}
	f := NewFeed(fetcher, 10, nil)
	added, err := f.Replenish(context.Background())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Zero(t, fetcher.calls)
}

func TestFeedState_String(t *testing.T) {
	assert.Equal(t, "empty", FeedEmpty.String())
	assert.Equal(t, "loading", FeedLoading.String())
	assert.Equal(t, "ready", FeedReady.String())
}

func TestFeedRegistry_PerUser(t *testing.T) {
	reg := NewFeedRegistry(&stubFetcher{}, 10, func() *rand.Rand { return rand.New(rand.NewSource(1)) })
	assert.Same(t, reg.For(1), reg.For(1))
	assert.NotSame(t, reg.For(1), reg.For(2))
}
