package models

import "testing"

func TestListable(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"gpt-4-turbo", true},
		{"claude-3-opus", true},
		{"Yi-34B-Chat", true},
		{"yi-34b", false},
		{"gpt-4-instruct", false},
		{"gemini-1.5-pro-beta", false},
		{"text-embedding-3-small", false},
		{"whisper-1", false},
		{"glm-4", true},
	}
	for _, tt := range tests {
		if got := Listable(tt.id); got != tt.want {
			t.Errorf("Listable(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"claude-3-opus", 100},
		{"Claude-3-Haiku", 100},
		{"gpt-4o", 90},
		{"gemini-pro", 85},
		{"claude-2.1", 80},
		{"gpt-3.5-turbo", 75},
		{"deepseek-chat", 70},
		{"moonshot-v1-8k", 65},
		{"llama-3-70b", 60},
		{"mistral-7b", 55},
		{"qwen-max", 50},
		{"glm-4", 0},
	}
	for _, tt := range tests {
		if got := Priority(tt.id); got != tt.want {
			t.Errorf("Priority(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("claude-3-opus"); got != "Anthropic Claude 3 - latest high-performance model" {
		t.Errorf("Describe(claude-3-opus) = %q", got)
	}
	if got := Describe("dall-e-3"); got != "OpenAI DALL-E - image generation model" {
		t.Errorf("Describe(dall-e-3) = %q", got)
	}
	if got := Describe("qwen-max"); got != GenericDescription {
		t.Errorf("Describe(qwen-max) = %q, want generic", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"claude-3-opus", "Claude 3 Opus"},
		{"gpt-4-32K", "Gpt 4 32k"},
		{"moonshot-v1-8k", "Moonshot V1 8k"},
		{"deepseek-V2.5", "Deepseek V2.5"},
		{"GPT-4O", "Gpt 4o"},
		{"mistral-7b", "Mistral 7b"},
		{"llama--vision", "Llama  Vision"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.id); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
