// Package models holds the model-family knowledge the chat client applies to
// raw provider model identifiers: which identifiers are offered to the user,
// how they are named and described, in what order they are listed, and which
// generation parameters a chat request uses for them.
//
// Every table is an ordered list evaluated top to bottom so that precedence
// is explicit and each rule can be tested on its own.
package models

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// chatFamilies are the identifier substrings a listed model must contain.
// Matching is case-sensitive.
var chatFamilies = []string{
	"gpt",
	"claude",
	"gemini",
	"llama",
	"mistral",
	"palm",
	"deepseek",
	"moonshot",
	"qwen",
	"zhipu",
	"Yi",
	"sparkdesk",
	"glm",
	"dall-e",
	"stable",
}

// excludedVariants are identifier substrings that hide a model even when its
// family is allowed.
var excludedVariants = []string{
	"instruct",
	"-beta",
}

// Listable reports whether a model identifier belongs to a known family and
// is not an instruct or beta variant.
func Listable(id string) bool {
	for _, ex := range excludedVariants {
		if strings.Contains(id, ex) {
			return false
		}
	}
	for _, fam := range chatFamilies {
		if strings.Contains(id, fam) {
			return true
		}
	}
	return false
}

// FamilyPriority is one row of the listing order table.
type FamilyPriority struct {
	Token    string
	Priority int
}

// Priorities orders model families for display; higher lists first.
// Tokens are matched case-insensitively, first match wins.
var Priorities = []FamilyPriority{
	{"claude-3", 100},
	{"gpt-4", 90},
	{"gemini", 85},
	{"claude-2", 80},
	{"gpt-3.5", 75},
	{"deepseek", 70},
	{"moonshot", 65},
	{"llama", 60},
	{"mistral", 55},
	{"qwen", 50},
}

// Priority returns the listing priority for a model identifier, or 0 when
// no family matches.
func Priority(id string) int {
	lower := strings.ToLower(id)
	for _, p := range Priorities {
		if strings.Contains(lower, p.Token) {
			return p.Priority
		}
	}
	return 0
}

// FamilyDescription is one row of the description table.
type FamilyDescription struct {
	Token       string
	Description string
}

// GenericDescription is used when no family in Descriptions matches.
const GenericDescription = "General-purpose AI model"

// Descriptions maps model families to a fixed description. Tokens are
// matched case-insensitively, first match wins.
var Descriptions = []FamilyDescription{
	{"claude-3", "Anthropic Claude 3 - latest high-performance model"},
	{"gpt-4", "OpenAI GPT-4 - powerful large language model"},
	{"gemini", "Google Gemini - next-generation AI model"},
	{"dall-e", "OpenAI DALL-E - image generation model"},
	{"stable", "Stable Diffusion - open-source image generation model"},
	{"whisper", "OpenAI Whisper - speech recognition model"},
	{"tts", "Text-to-speech model"},
}

// Describe returns the family description for a model identifier.
func Describe(id string) string {
	lower := strings.ToLower(id)
	for _, d := range Descriptions {
		if strings.Contains(lower, d.Token) {
			return d.Description
		}
	}
	return GenericDescription
}

var (
	versionSegment  = regexp.MustCompile(`^(?i)v\d`)
	capacitySegment = regexp.MustCompile(`^(?i)\d+k$`)
)

// DisplayName turns an identifier such as "claude-3-opus" into
// "Claude 3 Opus". Version segments keep an upper-case V ("V2") and capacity
// segments keep a lower-case k ("32k").
func DisplayName(id string) string {
	segments := strings.Split(id, "-")
	for i, seg := range segments {
		switch {
		case capacitySegment.MatchString(seg):
			segments[i] = strings.ToLower(seg)
		case versionSegment.MatchString(seg):
			segments[i] = "V" + strings.ToLower(seg[1:])
		default:
			segments[i] = capitalize(seg)
		}
	}
	return strings.Join(segments, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
