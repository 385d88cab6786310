package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/ferro-labs/ferrochat/models"
)

// modelList mirrors the OpenAI /v1/models response schema. Entries are kept
// raw so a single entry with an unexpected shape does not fail the listing.
type modelList struct {
	Data []json.RawMessage `json:"data"`
}

// parseModelList decodes a listing body. Any valid JSON without a "data"
// field (an array, a bare string, an object without it) is an empty
// listing; a "data" field that is not an array is an error.
func parseModelList(body []byte) ([]json.RawMessage, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]interface{})
	if !ok || obj["data"] == nil {
		return nil, nil
	}
	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

type rawModel struct {
	ID          interface{} `json:"id"`
	Description interface{} `json:"description"`
}

// Discoverer fetches and curates live model listings.
type Discoverer struct {
	httpClient *http.Client
}

// NewDiscoverer creates a Discoverer. A nil client selects http.DefaultClient.
func NewDiscoverer(client *http.Client) *Discoverer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Discoverer{httpClient: client}
}

// Discover lists the chat models a provider offers. The raw listing is
// filtered to known families, de-duplicated by id, given display names and
// descriptions, and sorted by family priority (stable, highest first).
//
// Every failure is returned as *DiscoveryError.
func (d *Discoverer) Discover(ctx context.Context, baseURL, apiKey string) ([]ModelInfo, error) {
	url := strings.TrimRight(baseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DiscoveryError{Err: fmt.Errorf("failed to create discovery request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &DiscoveryError{Err: fmt.Errorf("discovery request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DiscoveryError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read discovery response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DiscoveryError{Status: resp.StatusCode, Err: fmt.Errorf("discovery request returned %d: %s", resp.StatusCode, string(body))}
	}

	entries, err := parseModelList(body)
	if err != nil {
		return nil, &DiscoveryError{Err: fmt.Errorf("failed to parse model list: %w", err)}
	}

	return curate(entries), nil
}

// curate applies the listing rules from package models to raw entries.
func curate(entries []json.RawMessage) []ModelInfo {
	seen := make(map[string]bool, len(entries))
	out := make([]ModelInfo, 0, len(entries))
	for _, raw := range entries {
		var m rawModel
		if json.Unmarshal(raw, &m) != nil {
			continue
		}
		id, ok := m.ID.(string)
		if !ok || id == "" || !models.Listable(id) || seen[id] {
			continue
		}
		seen[id] = true

		desc, _ := m.Description.(string)
		if desc == "" {
			desc = models.Describe(id)
		}
		out = append(out, ModelInfo{
			ID:          id,
			Name:        models.DisplayName(id),
			Description: desc,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return models.Priority(out[i].ID) > models.Priority(out[j].ID)
	})
	return out
}
