package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Tier selects the model used for a request.
type Tier int

const (
	// TierGeneral is used for full reports and cover letters.
	TierGeneral Tier = iota
	// TierSmall is used for cheap classification calls.
	TierSmall
)

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "small"
	default:
		return "general"
	}
}

// Generator produces free-form text that is expected to contain JSON.
// Implementations must bound every call with a timeout and must not retry.
type Generator interface {
	Generate(ctx context.Context, tier Tier, system, user string) (string, error)
}

// Models maps tiers to provider model names.
type Models struct {
	General string
	Small   string
}

// For returns the model name for a tier, falling back to the general model.
func (m Models) For(tier Tier) string {
	if tier == TierSmall && strings.TrimSpace(m.Small) != "" {
		return m.Small
	}
	return m.General
}

// Validate checks that at least the general model is configured.
func (m Models) Validate() error {
	if strings.TrimSpace(m.General) == "" {
		return fmt.Errorf("general model is required")
	}
	return nil
}

// ErrEmptyResponse is returned when the provider answered without content.
var ErrEmptyResponse = errors.New("llm response empty content")

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderGenerator fails every call; used when no provider credentials are set.
type PlaceholderGenerator struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderGenerator) Generate(ctx context.Context, tier Tier, system, user string) (string, error) {
	_ = ctx
	return "", ErrNotConfigured
}
