package models

import "strings"

// GenerationParams are the sampling settings sent with a chat completion.
// The penalties are nil unless a rule sets them, so they are omitted from
// the request body.
type GenerationParams struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// DefaultParams are applied to every model before any rule runs.
func DefaultParams() GenerationParams {
	return GenerationParams{
		MaxTokens:   4096,
		Temperature: 0.7,
		TopP:        0.9,
	}
}

// RuleGroup names a set of mutually exclusive rules: within a group only the
// first matching rule applies.
type RuleGroup string

// Rule groups evaluated by ParamsFor.
const (
	GroupFamily   RuleGroup = "family"
	GroupCapacity RuleGroup = "capacity"
)

// ParamRule pairs a case-insensitive identifier token with the change it
// makes to the generation parameters.
type ParamRule struct {
	Group RuleGroup
	Token string
	Apply func(p *GenerationParams)
}

// ParamRules is evaluated in order. At most one family rule and one capacity
// rule apply; capacity rules come last so they override MaxTokens whatever
// family matched.
var ParamRules = []ParamRule{
	{GroupFamily, "claude-3", func(*GenerationParams) {}},
	{GroupFamily, "gpt-4", func(p *GenerationParams) {
		if p.FrequencyPenalty == nil {
			p.FrequencyPenalty = float64Ptr(0)
		}
		if p.PresencePenalty == nil {
			p.PresencePenalty = float64Ptr(0)
		}
	}},
	{GroupFamily, "gemini", func(p *GenerationParams) { p.MaxTokens = 8192 }},
	{GroupCapacity, "32k", func(p *GenerationParams) { p.MaxTokens = 32768 }},
	{GroupCapacity, "16k", func(p *GenerationParams) { p.MaxTokens = 16384 }},
	{GroupCapacity, "128k", func(p *GenerationParams) { p.MaxTokens = 128000 }},
}

// ParamsFor derives generation parameters for a model identifier.
func ParamsFor(id string) GenerationParams {
	p := DefaultParams()
	lower := strings.ToLower(id)
	matched := make(map[RuleGroup]bool, 2)
	for _, r := range ParamRules {
		if matched[r.Group] || !strings.Contains(lower, r.Token) {
			continue
		}
		matched[r.Group] = true
		r.Apply(&p)
	}
	return p
}

func float64Ptr(v float64) *float64 { return &v }
