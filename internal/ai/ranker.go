package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/recommend"
)

const rankerSystemPrompt = "You are a campus transit assistant for UIUC. Given route options " +
	"to a destination, rank them and explain the best choice concisely. " +
	`Respond ONLY with valid JSON: {"ranked_order": [0,1,2], "ai_explanation": "..."}. ` +
	"Keep ai_explanation under 100 chars."

// RankerConfig holds configuration for the option ranker.
type RankerConfig struct {
	// Client is the Anthropic client. A disabled client turns ranking off.
	Client *Client

	// Logger for ranker operations.
	Logger zerolog.Logger
}

// Ranker reorders trip options using the model and annotates the top pick.
type Ranker struct {
	client *Client
	logger zerolog.Logger
}

// NewRanker creates a new option ranker.
func NewRanker(cfg RankerConfig) *Ranker {
	return &Ranker{
		client: cfg.Client,
		logger: cfg.Logger,
	}
}

// Enabled reports whether ranking will actually call the model.
func (r *Ranker) Enabled() bool {
	return r.client != nil && r.client.Enabled()
}

// Rank reorders options by model preference and sets the explanation on the
// top option. On any failure the input ordering is returned unchanged.
func (r *Ranker) Rank(ctx context.Context, origin, destination string, options []recommend.Option) []recommend.Option {
	if !r.Enabled() || len(options) < 2 {
		return options
	}

	prompt, err := r.buildPrompt(origin, destination, options)
	if err != nil {
		r.logger.Warn().Err(err).Msg("building ranking prompt failed")
		return options
	}

	raw, err := r.client.Ask(ctx, rankerSystemPrompt, prompt, 256)
	if err != nil {
		r.logger.Warn().Err(err).Msg("option ranking call failed")
		return options
	}

	var verdict rankerVerdict
	if err := json.Unmarshal([]byte(extractJSON(raw)), &verdict); err != nil {
		r.logger.Warn().Err(err).Msg("ranking response was not valid JSON")
		return options
	}

	ranked, ok := applyOrder(options, verdict.RankedOrder)
	if !ok {
		r.logger.Warn().
			Ints("ranked_order", verdict.RankedOrder).
			Msg("ranking response was not a valid permutation")
		return options
	}

	for i := range ranked {
		ranked[i].AIRanked = true
	}
	if verdict.AIExplanation != "" {
		ranked[0].AIExplanation = verdict.AIExplanation
	}

	return ranked
}

// buildPrompt renders the options into the user message.
func (r *Ranker) buildPrompt(origin, destination string, options []recommend.Option) (string, error) {
	summaries := make([]optionSummary, 0, len(options))
	for _, opt := range options {
		summaries = append(summaries, optionSummary{
			Type:            string(opt.Type),
			Summary:         opt.Summary,
			ETAMinutes:      opt.ETAMinutes,
			DepartInMinutes: opt.DepartInMinutes,
		})
	}

	encoded, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Origin: %s\nDestination: %s\nOptions:\n%s", origin, destination, encoded), nil
}

// applyOrder reorders options by the given index permutation.
func applyOrder(options []recommend.Option, order []int) ([]recommend.Option, bool) {
	if len(order) != len(options) {
		return nil, false
	}

	seen := make(map[int]bool, len(order))
	ranked := make([]recommend.Option, 0, len(options))
	for _, idx := range order {
		if idx < 0 || idx >= len(options) || seen[idx] {
			return nil, false
		}
		seen[idx] = true
		ranked = append(ranked, options[idx])
	}

	return ranked, true
}

// extractJSON trims any prose around the first JSON object in the reply.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

type rankerVerdict struct {
	RankedOrder   []int  `json:"ranked_order"`
	AIExplanation string `json:"ai_explanation"`
}

type optionSummary struct {
	Type            string  `json:"type"`
	Summary         string  `json:"summary"`
	ETAMinutes      float64 `json:"eta_minutes"`
	DepartInMinutes float64 `json:"depart_in_minutes"`
}
