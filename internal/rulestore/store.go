// Package rulestore persists dictionary rule text.
//
// A dictionary is stored as a single text document in the format owned by
// [github.com/mkarren/dictato/internal/dictionary]. Two backends are
// provided: [FileStore] for a local rules file the user can edit directly,
// and [PostgresStore] for deployments that already run a database.
//
// Both backends refuse to save text that fails parsing or validation, so a
// stored dictionary is always loadable and clean.
package rulestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkarren/dictato/internal/dictionary"
)

// Store persists the rule text of one dictionary.
type Store interface {
	// Load returns the stored rule text. A dictionary that was never saved
	// loads as the empty string, not an error.
	Load(ctx context.Context) (string, error)

	// Save replaces the stored rule text. Implementations reject text with
	// syntax or validation errors.
	Save(ctx context.Context, text string) error

	// Ping reports whether the backend is reachable and writable.
	Ping(ctx context.Context) error
}

// checkRuleText parses and validates text, returning an error that lists
// every problem found. Shared by all Store implementations.
func checkRuleText(text string) error {
	rules, parseErrs := dictionary.ParseRules(text)
	if len(parseErrs) > 0 {
		return fmt.Errorf("rulestore: invalid rule text: %s", strings.Join(parseErrs, "; "))
	}
	if err := dictionary.ValidateRules(rules); err != nil {
		return fmt.Errorf("rulestore: invalid rule set: %w", err)
	}
	return nil
}
