// Package review talks to the remote generator: it checks that uploads are what the
// user claims they are and produces full reports and cover letters.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"resume-bot/internal/llm"
	"resume-bot/internal/shared/metrics"
	"resume-bot/internal/shared/telemetry"
)

// Kind is the document kind a classifier checks for.
type Kind string

const (
	KindResume  Kind = "resume"
	KindVacancy Kind = "vacancy"
)

// FallbackPolicy decides the verdict when the classifier cannot get an answer.
type FallbackPolicy string

const (
	// FallbackAccept treats unclassifiable documents as valid.
	FallbackAccept FallbackPolicy = "accept"
	// FallbackReject treats unclassifiable documents as invalid.
	FallbackReject FallbackPolicy = "reject"
)

// ParseFallbackPolicy maps a config value to a policy. Empty means accept.
func ParseFallbackPolicy(value string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FallbackAccept):
		return FallbackAccept, nil
	case string(FallbackReject):
		return FallbackReject, nil
	default:
		return "", fmt.Errorf("unknown classifier fallback %q", value)
	}
}

// Verdict is the outcome of a validity check.
type Verdict struct {
	Valid  bool
	Reason string
	// Fallback is set when the verdict came from the fallback policy.
	Fallback bool
}

type verdictPayload struct {
	IsValid *bool  `mapstructure:"is_valid"`
	Reason  string `mapstructure:"reason"`
}

// Classifier checks whether text looks like a resume or a vacancy description.
type Classifier struct {
	gen    llm.Generator
	policy FallbackPolicy
	log    *zap.Logger
}

// NewClassifier constructs a Classifier.
func NewClassifier(gen llm.Generator, policy FallbackPolicy, log *zap.Logger) *Classifier {
	if policy == "" {
		policy = FallbackAccept
	}
	return &Classifier{gen: gen, policy: policy, log: telemetry.OrNop(log)}
}

// Classify asks the small model whether text is of the given kind. It never fails:
// transport and parse failures produce the fallback verdict.
func (c *Classifier) Classify(ctx context.Context, kind Kind, text string) Verdict {
	system, user := resumeCheckSystem, fmt.Sprintf(resumeCheckUser, text)
	if kind == KindVacancy {
		system, user = vacancyCheckSystem, fmt.Sprintf(vacancyCheckUser, text)
	}

	start := time.Now()
	raw, err := c.gen.Generate(ctx, llm.TierSmall, system, user)
	metrics.ObserveLLMLatency(time.Since(start))
	if err != nil {
		metrics.IncFailure(metrics.StageClassify)
		c.log.Warn("review.classify.failed", zap.String("kind", string(kind)), zap.Error(err))
		return c.fallback()
	}

	parsed := llm.ParseJSON(raw)
	if !parsed.OK {
		metrics.IncFailure(metrics.StageClassify)
		c.log.Warn("review.classify.unparsed",
			zap.String("kind", string(kind)),
			zap.String("raw", telemetry.Truncate(raw, 300)),
		)
		return c.fallback()
	}

	var payload verdictPayload
	if err := decode(parsed.Data, &payload); err != nil {
		metrics.IncFailure(metrics.StageClassify)
		c.log.Warn("review.classify.decode_failed", zap.String("kind", string(kind)), zap.Error(err))
		return c.fallback()
	}

	valid := true
	if payload.IsValid != nil {
		valid = *payload.IsValid
	}
	return Verdict{Valid: valid, Reason: strings.TrimSpace(payload.Reason)}
}

func (c *Classifier) fallback() Verdict {
	return Verdict{Valid: c.policy != FallbackReject, Fallback: true}
}

// decode maps loosely typed model output onto a tagged struct. Numbers given as
// strings and single strings given where lists are expected are accepted.
func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
