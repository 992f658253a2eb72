package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/llm"
	"resume-bot/internal/shared/metrics"
	"resume-bot/internal/shared/telemetry"
)

type reportPayload struct {
	Score     float64            `mapstructure:"score"`
	Strengths []string           `mapstructure:"strengths"`
	Problems  []string           `mapstructure:"problems"`
	Actions   []string           `mapstructure:"actions"`
	Sections  map[string]float64 `mapstructure:"sections"`
}

// FeedbackGenerator produces the full report for a resume.
type FeedbackGenerator struct {
	gen llm.Generator
	log *zap.Logger
}

// NewFeedbackGenerator constructs a FeedbackGenerator.
func NewFeedbackGenerator(gen llm.Generator, log *zap.Logger) *FeedbackGenerator {
	return &FeedbackGenerator{gen: gen, log: telemetry.OrNop(log)}
}

// Generate asks the general model for a structured report. A transport failure is
// returned as an error. Unparseable output is returned as a Detail with OK=false.
func (g *FeedbackGenerator) Generate(ctx context.Context, resume, vacancy string) (analyses.Detail, error) {
	system, user := buildFeedbackPrompt(resume, vacancy)
	prompt := system + "\n" + user

	start := time.Now()
	raw, err := g.gen.Generate(ctx, llm.TierGeneral, system, user)
	metrics.ObserveLLMLatency(time.Since(start))
	if err != nil {
		metrics.IncFailure(metrics.StageLLM)
		return analyses.Detail{}, fmt.Errorf("generate feedback: %w", err)
	}

	parsed := llm.ParseJSON(raw)
	if !parsed.OK {
		metrics.IncFailure(metrics.StageParse)
		g.log.Warn("review.feedback.unparsed", zap.String("raw", telemetry.Truncate(raw, 500)))
		return analyses.Failed(raw, prompt), nil
	}

	var payload reportPayload
	if err := decode(parsed.Data, &payload); err != nil {
		metrics.IncFailure(metrics.StageParse)
		g.log.Warn("review.feedback.decode_failed", zap.Error(err))
		return analyses.Failed(raw, prompt), nil
	}

	sections := make(map[string]int, len(payload.Sections))
	for name, v := range payload.Sections {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		sections[name] = clampRound(v, 0, 10)
	}

	return analyses.Detail{
		Score:     clampRound(payload.Score, 0, 100),
		Strengths: cleanItems(payload.Strengths),
		Problems:  cleanItems(payload.Problems),
		Actions:   cleanItems(payload.Actions),
		Sections:  sections,
		OK:        true,
		Raw:       raw,
		Prompt:    prompt,
	}, nil
}

func buildFeedbackPrompt(resume, vacancy string) (string, string) {
	var user strings.Builder
	fmt.Fprintf(&user, feedbackUser, resume)
	if strings.TrimSpace(vacancy) != "" {
		fmt.Fprintf(&user, feedbackVacancy, vacancy)
	}
	user.WriteString(feedbackTail)
	return feedbackSystem, user.String()
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func clampRound(v float64, lo, hi int) int {
	if math.IsNaN(v) {
		return lo
	}
	n := int(math.Round(v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
