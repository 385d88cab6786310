package settings

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ferro-labs/ferrochat/internal/cache"
	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/providers"
	"github.com/ferro-labs/ferrochat/providers/providertest"
	"github.com/ferro-labs/ferrochat/storage"
)

type fixture struct {
	mgr   *Manager
	store *storage.Memory
	cache *cache.Models
	fake  *providertest.Server
	rec   *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := providertest.New()
	t.Cleanup(fake.Close)

	reg := providers.NewRegistry(
		providers.ProviderConfig{Name: providers.NameAIHub, BaseURL: fake.BaseURL(), APIKey: "sk-default"},
		providers.ProviderConfig{Name: providers.NameDeepSeek, BaseURL: fake.BaseURL()},
	)
	store := storage.NewMemory()
	rec := &events.Recorder{}
	c := cache.NewModels(store, 0, rec.Sink())
	return &fixture{
		mgr:   NewManager(store, reg, c, providers.NewDiscoverer(fake.Client()), rec.Sink()),
		store: store,
		cache: c,
		fake:  fake,
		rec:   rec,
	}
}

func (f *fixture) putRaw(t *testing.T, raw string) {
	t.Helper()
	if err := f.store.Put(context.Background(), DocumentKey, []byte(raw)); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}

func TestLoad_Absent(t *testing.T) {
	f := newFixture(t)
	if got := f.mgr.Load(context.Background()); got != Defaults() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	f := newFixture(t)
	f.putRaw(t, `{"selectedProvider":`)
	if got := f.mgr.Load(context.Background()); got != Defaults() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoad_UnknownProviderRevertsWholesale(t *testing.T) {
	f := newFixture(t)
	f.putRaw(t, `{"selectedProvider":"ghost","selectedModel":"x","customApiKey":"k"}`)

	got := f.mgr.Load(context.Background())
	if got != Defaults() {
		t.Errorf("Load() = %+v, want defaults with no carried fields", got)
	}
}

func TestLoad_LegacyModelMigrated(t *testing.T) {
	f := newFixture(t)
	f.putRaw(t, `{"selectedProvider":"deepseek","selectedModel":"claude-3-sonnet","customApiKey":"sk-mine"}`)

	got := f.mgr.Load(context.Background())
	want := APIConfig{SelectedProvider: "deepseek", SelectedModel: DefaultModel, CustomAPIKey: "sk-mine"}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_OtherModelsUntouched(t *testing.T) {
	f := newFixture(t)
	f.putRaw(t, `{"selectedProvider":"aihub","selectedModel":"claude-3-sonnet-latest"}`)

	if got := f.mgr.Load(context.Background()).SelectedModel; got != "claude-3-sonnet-latest" {
		t.Errorf("SelectedModel = %q, want claude-3-sonnet-latest", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := APIConfig{SelectedProvider: "deepseek", SelectedModel: "deepseek-chat", CustomAPIKey: "sk-x"}

	f.mgr.Save(ctx, cfg)
	if got := f.mgr.Load(ctx); got != cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
	if f.rec.Count(events.SettingsSaved) != 1 {
		t.Errorf("settings.saved events = %d, want 1", f.rec.Count(events.SettingsSaved))
	}
}

func TestSave_OmitsEmptyCustomKey(t *testing.T) {
	f := newFixture(t)
	f.mgr.Save(context.Background(), APIConfig{SelectedProvider: "aihub", SelectedModel: "gpt-4"})

	raw, _ := f.store.Get(context.Background(), DocumentKey)
	want := `{"selectedProvider":"aihub","selectedModel":"gpt-4"}`
	if string(raw) != want {
		t.Errorf("stored = %s, want %s", raw, want)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  APIConfig
		want error
	}{
		{"unknown provider", APIConfig{SelectedProvider: "ghost", SelectedModel: "gpt-4"}, ErrInvalidProvider},
		{"empty model", APIConfig{SelectedProvider: "aihub"}, ErrInvalidModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.mgr.Validate(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}

			f.mgr.Save(context.Background(), tt.cfg)
			if _, err := f.store.Get(context.Background(), DocumentKey); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("invalid config was persisted (err=%v)", err)
			}
			if f.rec.Count(events.SettingsRejected) != 1 {
				t.Errorf("settings.rejected events = %d, want 1", f.rec.Count(events.SettingsRejected))
			}
		})
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mgr.Save(ctx, APIConfig{SelectedProvider: "deepseek", SelectedModel: "deepseek-chat"})

	if err := f.mgr.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if got := f.mgr.Load(ctx); got != Defaults() {
		t.Errorf("Load() after Reset = %+v, want defaults", got)
	}
	if err := f.mgr.Reset(ctx); err != nil {
		t.Errorf("second Reset() error: %v", err)
	}
}

func TestResolveProvider(t *testing.T) {
	f := newFixture(t)
	p, err := f.mgr.ResolveProvider(APIConfig{SelectedProvider: "aihub"})
	if err != nil {
		t.Fatalf("ResolveProvider() error: %v", err)
	}
	if p.APIKey != "sk-default" {
		t.Errorf("APIKey = %q", p.APIKey)
	}

	_, err = f.mgr.ResolveProvider(APIConfig{SelectedProvider: "ghost"})
	var upe *providers.UnknownProviderError
	if !errors.As(err, &upe) {
		t.Errorf("error = %v, want *UnknownProviderError", err)
	}
}

func TestEffectiveAPIKey(t *testing.T) {
	p := providers.ProviderConfig{Name: "aihub", APIKey: "sk-default"}
	if got := EffectiveAPIKey(APIConfig{}, p); got != "sk-default" {
		t.Errorf("EffectiveAPIKey() = %q, want provider default", got)
	}
	if got := EffectiveAPIKey(APIConfig{CustomAPIKey: "sk-mine"}, p); got != "sk-mine" {
		t.Errorf("EffectiveAPIKey() = %q, want custom key", got)
	}
}

func TestListModelsFor_CachesDiscovery(t *testing.T) {
	f := newFixture(t)
	f.fake.SetModels(http.StatusOK, providertest.ModelList("gpt-4", "claude-3-opus", "whisper-1"))
	ctx := context.Background()

	first, err := f.mgr.ListModelsFor(ctx, "aihub", false)
	if err != nil {
		t.Fatalf("ListModelsFor() error: %v", err)
	}
	if len(first) != 2 || first[0].ID != "claude-3-opus" || first[1].ID != "gpt-4" {
		t.Fatalf("ListModelsFor() = %+v", first)
	}
	if got := f.fake.LastModelsHeader().Get("Authorization"); got != "Bearer sk-default" {
		t.Errorf("Authorization = %q, want provider default key", got)
	}

	second, err := f.mgr.ListModelsFor(ctx, "aihub", false)
	if err != nil {
		t.Fatalf("second ListModelsFor() error: %v", err)
	}
	if f.fake.ModelCalls() != 1 {
		t.Errorf("model calls = %d, want 1 (second call served from cache)", f.fake.ModelCalls())
	}
	if len(second) != len(first) {
		t.Errorf("cached listing length = %d, want %d", len(second), len(first))
	}
	if f.rec.Count(events.ModelsDiscovered) != 1 {
		t.Errorf("models.discovered events = %d, want 1", f.rec.Count(events.ModelsDiscovered))
	}
}

func TestListModelsFor_ForceRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.SetModels(http.StatusOK, providertest.ModelList("gpt-4"))
	if _, err := f.mgr.ListModelsFor(ctx, "aihub", false); err != nil {
		t.Fatal(err)
	}

	f.fake.SetModels(http.StatusOK, providertest.ModelList("gpt-4", "gemini-pro"))
	got, err := f.mgr.ListModelsFor(ctx, "aihub", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("refreshed listing = %+v, want 2 models", got)
	}
	if f.fake.ModelCalls() != 2 {
		t.Errorf("model calls = %d, want 2", f.fake.ModelCalls())
	}
	cached, ok := f.cache.Get(ctx, "aihub")
	if !ok || len(cached) != 2 {
		t.Errorf("cache not updated after refresh: %+v", cached)
	}
}

func TestListModelsFor_DiscoveryErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.fake.SetModels(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	_, err := f.mgr.ListModelsFor(context.Background(), "aihub", false)
	var de *providers.DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DiscoveryError", err)
	}
	if de.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", de.Status)
	}
	if _, ok := f.cache.Get(context.Background(), "aihub"); ok {
		t.Error("failed discovery must not populate the cache")
	}
	if f.rec.Count(events.DiscoveryFailed) != 1 {
		t.Errorf("models.discovery_failed events = %d, want 1", f.rec.Count(events.DiscoveryFailed))
	}
}

func TestListModelsFor_UnknownProvider(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.ListModelsFor(context.Background(), "ghost", false)
	var upe *providers.UnknownProviderError
	if !errors.As(err, &upe) {
		t.Errorf("error = %v, want *UnknownProviderError", err)
	}
	if f.fake.ModelCalls() != 0 {
		t.Errorf("model calls = %d, want 0", f.fake.ModelCalls())
	}
}
