package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-bot/internal/analyses"
	"resume-bot/internal/llm"
)

type stubGenerator struct {
	out    string
	err    error
	calls  int
	tier   llm.Tier
	system string
	user   string
}

func (s *stubGenerator) Generate(ctx context.Context, tier llm.Tier, system, user string) (string, error) {
	s.calls++
	s.tier = tier
	s.system = system
	s.user = user
	return s.out, s.err
}

func TestClassifyUsesSmallTierAndKindPrompt(t *testing.T) {
	gen := &stubGenerator{out: `{"is_valid": false, "reason": " это рецепт "}`}
	c := NewClassifier(gen, FallbackAccept, nil)

	verdict := c.Classify(context.Background(), KindVacancy, "борщ: свёкла, капуста")

	assert.Equal(t, llm.TierSmall, gen.tier)
	assert.Equal(t, vacancyCheckSystem, gen.system)
	assert.Contains(t, gen.user, "борщ: свёкла, капуста")
	assert.False(t, verdict.Valid)
	assert.False(t, verdict.Fallback)
	assert.Equal(t, "это рецепт", verdict.Reason)
}

func TestClassifyResumePrompt(t *testing.T) {
	gen := &stubGenerator{out: "```json\n{\"is_valid\": \"true\"}\n```"}
	verdict := NewClassifier(gen, FallbackReject, nil).Classify(context.Background(), KindResume, "cv")

	assert.Equal(t, resumeCheckSystem, gen.system)
	assert.True(t, verdict.Valid)
	assert.False(t, verdict.Fallback)
}

func TestClassifyMissingFieldDefaultsToValid(t *testing.T) {
	gen := &stubGenerator{out: `{"reason": "ok"}`}
	verdict := NewClassifier(gen, FallbackReject, nil).Classify(context.Background(), KindResume, "cv")
	assert.True(t, verdict.Valid)
}

func TestClassifyFallbackPolicy(t *testing.T) {
	tests := []struct {
		name   string
		gen    *stubGenerator
		policy FallbackPolicy
		want   bool
	}{
		{name: "parse failure accept", gen: &stubGenerator{out: "не знаю"}, policy: FallbackAccept, want: true},
		{name: "parse failure reject", gen: &stubGenerator{out: "не знаю"}, policy: FallbackReject, want: false},
		{name: "transport failure accept", gen: &stubGenerator{err: errors.New("timeout")}, policy: FallbackAccept, want: true},
		{name: "transport failure reject", gen: &stubGenerator{err: errors.New("timeout")}, policy: FallbackReject, want: false},
		{name: "default policy", gen: &stubGenerator{out: "???"}, policy: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := NewClassifier(tt.gen, tt.policy, nil).Classify(context.Background(), KindResume, "x")
			assert.Equal(t, tt.want, verdict.Valid)
			assert.True(t, verdict.Fallback)
			assert.Equal(t, 1, tt.gen.calls)
		})
	}
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy(" Reject ")
	require.NoError(t, err)
	assert.Equal(t, FallbackReject, p)

	p, err = ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackAccept, p)

	_, err = ParseFallbackPolicy("maybe")
	assert.Error(t, err)
}

func TestGenerateStructuredReport(t *testing.T) {
	gen := &stubGenerator{out: "Вот анализ:\n```json\n" +
		`{"score": 80, "strengths": ["Чёткая структура", " "], "problems": ["Нет метрик"], "actions": ["Добавьте цифры"], "sections": {"experience": 7.6, "skills": 14}}` +
		"\n```"}
	g := NewFeedbackGenerator(gen, nil)

	detail, err := g.Generate(context.Background(), "резюме", "")
	require.NoError(t, err)

	assert.True(t, detail.OK)
	assert.Equal(t, 80, detail.Score)
	assert.Equal(t, []string{"Чёткая структура"}, detail.Strengths)
	assert.Equal(t, []string{"Нет метрик"}, detail.Problems)
	assert.Equal(t, []string{"Добавьте цифры"}, detail.Actions)
	assert.Equal(t, map[string]int{"experience": 8, "skills": 10}, detail.Sections)
	assert.Equal(t, gen.out, detail.Raw)
	assert.Equal(t, llm.TierGeneral, gen.tier)
	assert.Equal(t, feedbackSystem+"\n"+gen.user, detail.Prompt)
}

func TestGenerateIncludesVacancyOnlyWhenPresent(t *testing.T) {
	gen := &stubGenerator{out: `{"score": 50}`}
	g := NewFeedbackGenerator(gen, nil)

	_, err := g.Generate(context.Background(), "резюме", "  ")
	require.NoError(t, err)
	assert.NotContains(t, gen.user, "Описание вакансии")

	_, err = g.Generate(context.Background(), "резюме", "Go developer, Kafka")
	require.NoError(t, err)
	assert.Contains(t, gen.user, "Описание вакансии")
	assert.Contains(t, gen.user, "Go developer, Kafka")
}

func TestGenerateClampsScore(t *testing.T) {
	gen := &stubGenerator{out: `{"score": 150, "sections": {"a": -3}}`}
	detail, err := NewFeedbackGenerator(gen, nil).Generate(context.Background(), "r", "")
	require.NoError(t, err)
	assert.Equal(t, 100, detail.Score)
	assert.Equal(t, 0, detail.Sections["a"])
	assert.NotNil(t, detail.Strengths)
}

func TestGenerateParseFailureKeepsRaw(t *testing.T) {
	gen := &stubGenerator{out: "Извините, я не могу оценить этот документ."}
	detail, err := NewFeedbackGenerator(gen, nil).Generate(context.Background(), "r", "")
	require.NoError(t, err)

	assert.False(t, detail.OK)
	assert.Equal(t, gen.out, detail.Raw)
	assert.Empty(t, detail.Strengths)
	assert.Empty(t, detail.Problems)
	assert.Empty(t, detail.Actions)
	assert.Empty(t, detail.Sections)
	assert.NotEmpty(t, detail.Prompt)
}

func TestGenerateDecodeFailureIsParseFailure(t *testing.T) {
	gen := &stubGenerator{out: `{"score": {"nested": true}}`}
	detail, err := NewFeedbackGenerator(gen, nil).Generate(context.Background(), "r", "")
	require.NoError(t, err)
	assert.False(t, detail.OK)
	assert.Equal(t, gen.out, detail.Raw)
}

func TestGenerateTransportFailureIsNotRetried(t *testing.T) {
	gen := &stubGenerator{err: context.DeadlineExceeded}
	_, err := NewFeedbackGenerator(gen, nil).Generate(context.Background(), "r", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, gen.calls)
}

func TestCoverLetter(t *testing.T) {
	gen := &stubGenerator{out: `{"letter": "  Здравствуйте! Меня заинтересовала вакансия.  "}`}
	w := NewCoverLetterWriter(gen, nil)

	detail := analyses.Detail{Score: 70, Strengths: []string{"Go"}, Problems: []string{"Нет дат"}}
	letter, err := w.Write(context.Background(), detail, "Backend Go")
	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте! Меня заинтересовала вакансия.", letter)
	assert.Contains(t, gen.user, "Оценка: 70/100")
	assert.Contains(t, gen.user, "Backend Go")
	assert.True(t, strings.Contains(gen.user, "- Go"))
}

func TestCoverLetterEmpty(t *testing.T) {
	for _, out := range []string{`{"letter": ""}`, "no json here"} {
		_, err := NewCoverLetterWriter(&stubGenerator{out: out}, nil).Write(context.Background(), analyses.Detail{}, "v")
		assert.ErrorIs(t, err, ErrEmptyLetter)
	}
}
