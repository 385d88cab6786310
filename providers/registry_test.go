package providers

import (
	"errors"
	"testing"
)

func fakeEnv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestDefaultProviders(t *testing.T) {
	cfgs := DefaultProviders(fakeEnv(map[string]string{"DEEPSEEK_API_KEY": "sk-ds"}))
	want := []ProviderConfig{
		{Name: "aihub", BaseURL: "https://aihubmix.com/v1"},
		{Name: "deepseek", BaseURL: "https://api.deepseek.com/v1", APIKey: "sk-ds"},
		{Name: "moonshot", BaseURL: "https://api.moonshot.cn/v1"},
		{Name: "zhipu", BaseURL: "https://open.bigmodel.cn/api/paas/v3"},
	}
	if len(cfgs) != len(want) {
		t.Fatalf("len = %d, want %d", len(cfgs), len(want))
	}
	for i := range want {
		if cfgs[i] != want[i] {
			t.Errorf("cfgs[%d] = %+v, want %+v", i, cfgs[i], want[i])
		}
	}
}

func TestRegistry_GetReturnsStaticRecord(t *testing.T) {
	cfgs := DefaultProviders(fakeEnv(map[string]string{"AIHUB_API_KEY": "sk-aihub"}))
	r := NewRegistry(cfgs...)
	for _, want := range cfgs {
		got, err := r.Get(want.Name)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", want.Name, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %+v, want %+v", want.Name, got, want)
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(DefaultProviders(fakeEnv(nil))...)
	_, err := r.Get("ghost")
	var upe *UnknownProviderError
	if !errors.As(err, &upe) {
		t.Fatalf("Get(ghost) error = %v, want *UnknownProviderError", err)
	}
	if upe.Name != "ghost" {
		t.Errorf("UnknownProviderError.Name = %q, want ghost", upe.Name)
	}
	if r.Has("ghost") {
		t.Error("Has(ghost) = true")
	}
}

func TestRegistry_OrderAndDuplicates(t *testing.T) {
	r := NewRegistry(
		ProviderConfig{Name: "b", BaseURL: "http://b"},
		ProviderConfig{Name: "a", BaseURL: "http://a"},
		ProviderConfig{Name: "b", BaseURL: "http://b2"},
	)
	names := r.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("Names() = %v, want [b a]", names)
	}
	got, _ := r.Get("b")
	if got.BaseURL != "http://b2" {
		t.Errorf("duplicate replaced BaseURL = %q, want http://b2", got.BaseURL)
	}

	list := r.List()
	list[0].BaseURL = "mutated"
	again, _ := r.Get("b")
	if again.BaseURL != "http://b2" {
		t.Error("List() exposed internal state")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfgs := []ProviderConfig{
		{Name: "aihub", BaseURL: "https://aihubmix.com/v1/"},
		{Name: "deepseek", BaseURL: "https://api.deepseek.com/v1"},
	}
	out := ApplyOverrides(cfgs, map[string]string{"deepseek": "http://localhost:9000/v1/", "ghost": "x"})
	if out[0].BaseURL != "https://aihubmix.com/v1" {
		t.Errorf("aihub BaseURL = %q", out[0].BaseURL)
	}
	if out[1].BaseURL != "http://localhost:9000/v1" {
		t.Errorf("deepseek BaseURL = %q", out[1].BaseURL)
	}
	if cfgs[1].BaseURL != "https://api.deepseek.com/v1" {
		t.Error("ApplyOverrides mutated input")
	}
}

func TestEnvKey(t *testing.T) {
	if got := EnvKey("moonshot"); got != "MOONSHOT_API_KEY" {
		t.Errorf("EnvKey(moonshot) = %q", got)
	}
	if got := EnvKey("ghost"); got != "" {
		t.Errorf("EnvKey(ghost) = %q, want empty", got)
	}
}
