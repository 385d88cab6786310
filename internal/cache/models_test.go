package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/internal/metrics"
	"github.com/ferro-labs/ferrochat/providers"
	"github.com/ferro-labs/ferrochat/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStore) Put(context.Context, string, []byte) error   { return errBroken }
func (brokenStore) Delete(context.Context, string) error        { return errBroken }
func (brokenStore) Close() error                                { return nil }

var sample = []providers.ModelInfo{
	{ID: "claude-3-opus", Name: "Claude 3 Opus", Description: "Anthropic Claude 3 - latest high-performance model"},
	{ID: "gpt-4", Name: "Gpt 4"},
}

func newTestCache(store storage.Store) (*Models, *fakeClock, *events.Recorder) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	rec := &events.Recorder{}
	return NewModels(store, 0, rec.Sink()).WithClock(clock.Now), clock, rec
}

func TestModels_ImplementsCache(_ *testing.T) {
	var _ Cache = (*Models)(nil)
}

func TestModels_PutThenGet(t *testing.T) {
	c, _, _ := newTestCache(storage.NewMemory())
	ctx := context.Background()

	c.Put(ctx, "aihub", sample)
	got, ok := c.Get(ctx, "aihub")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != len(sample) {
		t.Fatalf("got %d models, want %d", len(got), len(sample))
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], sample[i])
		}
	}
}

func TestModels_Miss(t *testing.T) {
	c, _, _ := newTestCache(storage.NewMemory())
	if _, ok := c.Get(context.Background(), "deepseek"); ok {
		t.Error("expected cache miss")
	}
}

func TestModels_ExpiresAfterWindowAndPurges(t *testing.T) {
	store := storage.NewMemory()
	c, clock, _ := newTestCache(store)
	ctx := context.Background()

	c.Put(ctx, "aihub", sample)
	c.Put(ctx, "deepseek", sample[:1])

	clock.Advance(24 * time.Hour)
	if _, ok := c.Get(ctx, "aihub"); !ok {
		t.Fatal("entry exactly 24h old should still be fresh")
	}

	expired := metrics.ModelCacheLookups.WithLabelValues("aihub", "expired")
	before := testutil.ToFloat64(expired)
	clock.Advance(time.Millisecond)
	if _, ok := c.Get(ctx, "aihub"); ok {
		t.Fatal("expected miss after 24h window")
	}
	if got := testutil.ToFloat64(expired) - before; got != 1 {
		t.Errorf("expired lookups delta = %v, want 1", got)
	}

	doc, _ := c.read(ctx)
	if _, ok := doc.Models["aihub"]; ok {
		t.Error("expired entry was not purged from the document")
	}
	if _, ok := doc.Models["deepseek"]; !ok {
		t.Error("purge removed an unrelated provider")
	}
}

func TestModels_EvictAndEvictAll(t *testing.T) {
	c, _, _ := newTestCache(storage.NewMemory())
	ctx := context.Background()

	c.Put(ctx, "aihub", sample)
	c.Put(ctx, "moonshot", sample)

	c.Evict(ctx, "aihub")
	if _, ok := c.Get(ctx, "aihub"); ok {
		t.Error("expected aihub evicted")
	}
	if _, ok := c.Get(ctx, "moonshot"); !ok {
		t.Error("expected moonshot to survive single eviction")
	}

	c.EvictAll(ctx)
	if _, ok := c.Get(ctx, "moonshot"); ok {
		t.Error("expected moonshot evicted by EvictAll")
	}
}

func TestModels_CorruptDocumentDegradesToMiss(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Put(context.Background(), DocumentKey, []byte("{not json"))
	c, _, rec := newTestCache(store)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "aihub"); ok {
		t.Fatal("expected miss on corrupt document")
	}
	if rec.Count(events.CacheReadFailed) != 1 {
		t.Errorf("read_failed events = %d, want 1", rec.Count(events.CacheReadFailed))
	}

	c.Put(ctx, "aihub", sample)
	if _, ok := c.Get(ctx, "aihub"); !ok {
		t.Error("Put should replace a corrupt document")
	}
}

func TestModels_StorageFailuresAreAbsorbed(t *testing.T) {
	c, _, rec := newTestCache(brokenStore{})
	ctx := context.Background()

	c.Put(ctx, "aihub", sample)
	if _, ok := c.Get(ctx, "aihub"); ok {
		t.Error("expected miss when storage fails")
	}
	c.Evict(ctx, "aihub")
	c.EvictAll(ctx)

	if rec.Count(events.CacheWriteFailed) == 0 {
		t.Error("expected cache.write_failed events")
	}
	if rec.Count(events.CacheReadFailed) == 0 {
		t.Error("expected cache.read_failed events")
	}
}

func TestModels_PersistedShape(t *testing.T) {
	store := storage.NewMemory()
	c, clock, _ := newTestCache(store)
	c.Put(context.Background(), "aihub", sample[:1])

	raw, err := store.Get(context.Background(), DocumentKey)
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	want := `{"models":{"aihub":{"timestamp":` +
		strconv.FormatInt(clock.Now().UnixMilli(), 10) +
		`,"data":[{"id":"claude-3-opus","name":"Claude 3 Opus","description":"Anthropic Claude 3 - latest high-performance model"}]}}}`
	if string(raw) != want {
		t.Errorf("document = %s\nwant       %s", raw, want)
	}
}

func TestModels_ConcurrentAccess(_ *testing.T) {
	c, _, _ := newTestCache(storage.NewMemory())
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := string(rune('a' + i%5))
			c.Put(ctx, p, sample)
			c.Get(ctx, p)
		}(i)
	}
	wg.Wait()
}
