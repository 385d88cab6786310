package models

import "testing"

func TestParamsFor(t *testing.T) {
	tests := []struct {
		id            string
		wantMaxTokens int
		wantPenalties bool
	}{
		{"claude-3-sonnet-20240229", 4096, false},
		{"GPT-4-turbo", 4096, true},
		{"gemini-pro", 8192, false},
		{"gemini-pro-32k", 32768, false},
		{"gpt-4-32k", 32768, true},
		{"gpt-3.5-turbo-16k", 16384, false},
		{"moonshot-v1-128k", 128000, false},
		{"deepseek-chat", 4096, false},
	}
	for _, tt := range tests {
		p := ParamsFor(tt.id)
		if p.MaxTokens != tt.wantMaxTokens {
			t.Errorf("ParamsFor(%q).MaxTokens = %d, want %d", tt.id, p.MaxTokens, tt.wantMaxTokens)
		}
		if p.Temperature != 0.7 || p.TopP != 0.9 {
			t.Errorf("ParamsFor(%q) temperature/top_p = %v/%v, want 0.7/0.9", tt.id, p.Temperature, p.TopP)
		}
		hasPenalties := p.FrequencyPenalty != nil && p.PresencePenalty != nil
		if hasPenalties != tt.wantPenalties {
			t.Errorf("ParamsFor(%q) penalties set = %v, want %v", tt.id, hasPenalties, tt.wantPenalties)
		}
		if hasPenalties && (*p.FrequencyPenalty != 0 || *p.PresencePenalty != 0) {
			t.Errorf("ParamsFor(%q) penalties = %v/%v, want 0/0", tt.id, *p.FrequencyPenalty, *p.PresencePenalty)
		}
	}
}

func TestParamsFor_FirstFamilyWins(t *testing.T) {
	// "gpt-4" precedes "gemini" in the table, so the gemini max_tokens bump
	// does not apply.
	p := ParamsFor("gpt-4-gemini-bridge")
	if p.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", p.MaxTokens)
	}
	if p.FrequencyPenalty == nil {
		t.Error("expected gpt-4 penalties")
	}
}

func TestParamsFor_OneCapacityOverride(t *testing.T) {
	p := ParamsFor("custom-16k-32k")
	if p.MaxTokens != 32768 {
		t.Errorf("MaxTokens = %d, want 32768 (first capacity rule in table order)", p.MaxTokens)
	}
}
