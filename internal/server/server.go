// Package server exposes the dictionary engine over HTTP.
//
// The server holds the currently active rule set behind a read-write mutex
// and swaps it atomically on updates. The engine itself stays pure; all
// concurrency concerns live here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarren/dictato/internal/dictionary"
	"github.com/mkarren/dictato/internal/health"
	"github.com/mkarren/dictato/internal/observe"
	"github.com/mkarren/dictato/internal/rulestore"
	"github.com/mkarren/dictato/internal/suggest"
)

// maxBodyBytes caps request bodies. Rule dictionaries and transcripts are
// small; anything above a megabyte is a client error.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful HTTP shutdown in [Server.Run].
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end for the dictionary engine. Create it with
// [New], install rules with [Server.SetRules], and serve [Server.Routes].
type Server struct {
	store   rulestore.Store
	metrics *observe.Metrics
	matcher *suggest.Matcher
	hc      *health.Handler

	mu       sync.RWMutex
	rules    dictionary.RuleSet
	ruleText string
}

// Option configures a [Server].
type Option func(*Server)

// WithMatcher overrides the suggestion matcher used by POST /v1/suggest.
func WithMatcher(m *suggest.Matcher) Option {
	return func(s *Server) { s.matcher = m }
}

// WithHealth overrides the health handler. The default handler carries a
// single "store" readiness check backed by the rule store's Ping.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.hc = h }
}

// New creates a Server with an empty active rule set.
func New(store rulestore.Store, metrics *observe.Metrics, opts ...Option) *Server {
	s := &Server{
		store:   store,
		metrics: metrics,
		matcher: suggest.New(),
		rules:   dictionary.RuleSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hc == nil {
		s.hc = health.New()
		s.hc.AddCheck("store", store.Ping)
	}
	return s
}

// SetRules swaps the active rule set. The rules are canonicalized first:
// replace rules are consolidated by target and the whole set is
// re-serialized, so GET /v1/rules always returns canonical text. The trigger
// ("startup", "api", "watcher") labels the reload metric.
func (s *Server) SetRules(ctx context.Context, rules dictionary.RuleSet, trigger string) {
	canonical := canonicalize(rules)
	text := dictionary.SerializeRules(canonical)

	s.mu.Lock()
	old := len(s.rules)
	s.rules = canonical
	s.ruleText = text
	s.mu.Unlock()

	s.metrics.RecordRuleReload(ctx, trigger, old, len(canonical))
}

// Rules returns a snapshot of the active rule set.
func (s *Server) Rules() dictionary.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// canonicalize keeps protect rules in order and consolidates replace rules
// by target. Application order of the replace rules is the consolidated
// first-seen-target order.
func canonicalize(rules dictionary.RuleSet) dictionary.RuleSet {
	var protects dictionary.RuleSet
	for _, r := range rules {
		if r.Kind == dictionary.KindProtect {
			protects = append(protects, r)
		}
	}
	out := make(dictionary.RuleSet, 0, len(rules))
	out = append(out, protects...)
	out = append(out, dictionary.ConsolidateReplaceRules(rules)...)
	return out
}

// ── Request/response bodies ──────────────────────────────────────────────────

type rewriteRequest struct {
	Text string `json:"text"`
}

type rewriteResponse struct {
	Text    string                    `json:"text"`
	Applied []dictionary.Substitution `json:"applied"`
}

type rulesUpdateResponse struct {
	Rules int `json:"rules"`
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Rules  int      `json:"rules"`
	Errors []string `json:"errors,omitempty"`
}

type suggestRequest struct {
	Text       string   `json:"text"`
	Vocabulary []string `json:"vocabulary"`
}

type suggestResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// handleRewrite applies the active rule set to the submitted text and
// returns the rewritten text together with the applied substitutions.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rules := s.Rules()
	start := time.Now()
	out, applied := dictionary.ApplyRulesTraced(req.Text, rules)

	total := 0
	for _, sub := range applied {
		total += sub.Count
	}
	s.metrics.RecordRewrite(r.Context(), "api", time.Since(start).Seconds(), total)

	if applied == nil {
		applied = []dictionary.Substitution{}
	}
	writeJSON(w, http.StatusOK, rewriteResponse{Text: out, Applied: applied})
}

// handleGetRules returns the canonical serialized form of the active rules
// as plain text.
func (s *Server) handleGetRules(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	text := s.ruleText
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// handlePutRules replaces the active rule set. The request body is raw rule
// text. Syntax and validation errors are all returned at once with status
// 422; on success the canonical form is persisted to the store and swapped
// in as the active set.
func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	text, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rules, problems := checkRules(text)
	if len(problems) > 0 {
		s.metrics.RecordRuleError(r.Context(), "api")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: problems})
		return
	}

	canonical := canonicalize(rules)
	if err := s.store.Save(r.Context(), dictionary.SerializeRules(canonical)); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("persist rules: %v", err))
		return
	}
	s.SetRules(r.Context(), rules, "api")

	writeJSON(w, http.StatusOK, rulesUpdateResponse{Rules: len(canonical)})
}

// handleValidateRules dry-runs the parser and validator over the submitted
// rule text without touching the active set.
func (s *Server) handleValidateRules(w http.ResponseWriter, r *http.Request) {
	text, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rules, problems := checkRules(text)
	if len(problems) > 0 {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Errors: problems})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Rules: len(rules)})
}

// handleSuggest proposes dictionary entries for vocabulary terms that the
// submitted transcript appears to have misheard.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions := s.matcher.Suggest(req.Text, req.Vocabulary)
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: suggestions})
}

// checkRules parses and validates rule text, returning the parsed rules and
// every problem found. Parse and validation problems are reported together.
func checkRules(text string) (dictionary.RuleSet, []string) {
	rules, parseErrs := dictionary.ParseRules(text)
	problems := append([]string(nil), parseErrs...)
	if err := dictionary.ValidateRules(rules); err != nil {
		problems = append(problems, strings.Split(err.Error(), "\n")...)
	}
	return rules, problems
}

// ── Routing and lifecycle ────────────────────────────────────────────────────

// Routes returns the full handler tree: API routes, health probes, and the
// Prometheus scrape endpoint, all wrapped in the observability middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/rewrite", s.handleRewrite)
	mux.HandleFunc("GET /v1/rules", s.handleGetRules)
	mux.HandleFunc("PUT /v1/rules", s.handlePutRules)
	mux.HandleFunc("POST /v1/rules/validate", s.handleValidateRules)
	mux.HandleFunc("POST /v1/suggest", s.handleSuggest)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.hc.Register(mux)

	return observe.Middleware(s.metrics)(mux)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully. It blocks until shutdown completes.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// ── HTTP helpers ─────────────────────────────────────────────────────────────

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func readBody(r *http.Request) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	return string(b), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"errors":["encode response"]}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Errors: []string{msg}})
}
