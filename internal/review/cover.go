package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/llm"
	"resume-bot/internal/shared/metrics"
	"resume-bot/internal/shared/telemetry"
)

// ErrEmptyLetter is returned when the model produced no letter text.
var ErrEmptyLetter = errors.New("cover letter empty")

type letterPayload struct {
	Letter string `mapstructure:"letter"`
}

// CoverLetterWriter drafts cover letters from a stored analysis.
type CoverLetterWriter struct {
	gen llm.Generator
	log *zap.Logger
}

// NewCoverLetterWriter constructs a CoverLetterWriter.
func NewCoverLetterWriter(gen llm.Generator, log *zap.Logger) *CoverLetterWriter {
	return &CoverLetterWriter{gen: gen, log: telemetry.OrNop(log)}
}

// Write returns a letter for the vacancy based on the analysis summary.
func (w *CoverLetterWriter) Write(ctx context.Context, detail analyses.Detail, vacancy string) (string, error) {
	user := fmt.Sprintf(coverUser, Summarize(detail), strings.TrimSpace(vacancy))

	start := time.Now()
	raw, err := w.gen.Generate(ctx, llm.TierGeneral, coverSystem, user)
	metrics.ObserveLLMLatency(time.Since(start))
	if err != nil {
		metrics.IncFailure(metrics.StageLLM)
		return "", fmt.Errorf("generate cover letter: %w", err)
	}

	parsed := llm.ParseJSON(raw)
	var payload letterPayload
	if parsed.OK {
		if err := decode(parsed.Data, &payload); err != nil {
			w.log.Warn("review.cover.decode_failed", zap.Error(err))
		}
	}
	letter := strings.TrimSpace(payload.Letter)
	if letter == "" {
		metrics.IncFailure(metrics.StageParse)
		w.log.Warn("review.cover.empty", zap.String("raw", telemetry.Truncate(raw, 300)))
		return "", ErrEmptyLetter
	}
	return letter, nil
}

// Summarize renders the structured parts of a detail as a compact plain-text brief.
func Summarize(detail analyses.Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Оценка: %d/100", detail.Score)
	writeList(&b, "Сильные стороны", detail.Strengths)
	writeList(&b, "Проблемы", detail.Problems)
	writeList(&b, "Рекомендации", detail.Actions)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString(":")
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
}
