package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-bot/internal/llm"
)

type fakeModels struct {
	calls  int
	model  string
	config *genai.GenerateContentConfig
	text   string
	resp   *genai.GenerateContentResponse
	err    error
	block  bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

var names = llm.Models{General: "gemini-2.5-pro", Small: "gemini-2.5-flash"}

func TestGenerateUsesTierModelAndSystemInstruction(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"is_valid":`, ` true}`)}
	gen := newGenerator(fake, names, time.Second)

	out, err := gen.Generate(context.Background(), llm.TierSmall, "classify", "document text")
	require.NoError(t, err)
	assert.Equal(t, "{\"is_valid\":\n true}", out)
	assert.Equal(t, "gemini-2.5-flash", fake.model)
	assert.Equal(t, "document text", fake.text)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "classify", fake.config.SystemInstruction.Parts[0].Text)
}

func TestGenerateEmptyResponse(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  ")}
	_, err := newGenerator(fake, names, time.Second).Generate(context.Background(), llm.TierGeneral, "s", "u")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerateWrapsErrorWithoutRetry(t *testing.T) {
	fake := &fakeModels{err: errors.New("boom")}
	_, err := newGenerator(fake, names, time.Second).Generate(context.Background(), llm.TierGeneral, "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateTimeout(t *testing.T) {
	fake := &fakeModels{block: true}
	_, err := newGenerator(fake, names, 20*time.Millisecond).Generate(context.Background(), llm.TierGeneral, "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
