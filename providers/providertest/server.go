// Package providertest provides a fake OpenAI-compatible provider for tests.
//
// The server answers GET /v1/models and POST /v1/chat/completions with
// canned responses, counts calls per route, and records every chat request
// so tests can assert on headers and body.
package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Recorded is a captured chat completion request.
type Recorded struct {
	Header http.Header
	Raw    []byte
	Body   map[string]interface{}
}

// Messages returns the contents of the recorded "messages" array in order.
func (r Recorded) Messages() []string {
	msgs, _ := r.Body["messages"].([]interface{})
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		obj, _ := m.(map[string]interface{})
		s, _ := obj["content"].(string)
		out = append(out, s)
	}
	return out
}

type canned struct {
	status int
	body   string
}

// Server is a fake provider backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	models     canned
	chat       canned
	chatDelay  time.Duration
	modelCalls int
	chatCalls  int
	modelsHdr  http.Header
	requests   []Recorded
}

// New starts a fake provider that lists no models and answers every chat
// request with "ok".
func New() *Server {
	s := &Server{
		models: canned{http.StatusOK, `{"object":"list","data":[]}`},
		chat:   canned{http.StatusOK, Completion("ok")},
	}
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Post("/chat/completions", s.handleChat)
	})
	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL returns the provider base URL clients should be configured with.
func (s *Server) BaseURL() string { return s.URL + "/v1" }

// SetModels sets the response for GET /v1/models.
func (s *Server) SetModels(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = canned{status, body}
}

// SetChat sets the response for POST /v1/chat/completions.
func (s *Server) SetChat(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = canned{status, body}
}

// SetChatDelay delays chat responses; a cancelled request returns early.
func (s *Server) SetChatDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatDelay = d
}

// ModelCalls returns how many times /v1/models was requested.
func (s *Server) ModelCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelCalls
}

// ChatCalls returns how many times /v1/chat/completions was requested.
func (s *Server) ChatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatCalls
}

// LastModelsHeader returns the headers of the most recent /v1/models
// request, or nil if there was none.
func (s *Server) LastModelsHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelsHdr
}

// LastChat returns the most recent chat request.
func (s *Server) LastChat() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.modelCalls++
	s.modelsHdr = r.Header.Clone()
	resp := s.models
	s.mu.Unlock()
	write(w, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)

	s.mu.Lock()
	s.chatCalls++
	s.requests = append(s.requests, Recorded{Header: r.Header.Clone(), Raw: raw, Body: body})
	resp, delay := s.chat, s.chatDelay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	write(w, resp)
}

func write(w http.ResponseWriter, c canned) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.status)
	_, _ = w.Write([]byte(c.body))
}

// Completion builds a minimal successful chat completion body.
func Completion(content string) string {
	b, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id":"chatcmpl-test","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":5,"total_tokens":8}}`, b)
}

// ModelList builds a /models body listing ids.
func ModelList(ids ...string) string {
	type entry struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	data := make([]entry, len(ids))
	for i, id := range ids {
		data[i] = entry{ID: id, Object: "model"}
	}
	b, _ := json.Marshal(map[string]interface{}{"object": "list", "data": data})
	return string(b)
}
