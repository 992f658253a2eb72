package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"resume-bot/internal/analyses"
	"resume-bot/internal/chunk"
)

const maxActions = 10

var markdownSpecial = regexp.MustCompile("([_*\\[\\]()~`>#+\\-=|{}.!\\\\])")

// EscapeMarkdown escapes text for the MarkdownV2 parse mode.
func EscapeMarkdown(s string) string {
	return markdownSpecial.ReplaceAllString(s, `\$1`)
}

// reportSections renders a parsed detail as separately sent MarkdownV2 sections.
// Empty lists are omitted.
func reportSections(d analyses.Detail) []string {
	sections := []string{fmt.Sprintf(headerScore, d.Score)}
	if s := bulletSection(headerStrength, d.Strengths); s != "" {
		sections = append(sections, s)
	}
	if s := bulletSection(headerProblems, d.Problems); s != "" {
		sections = append(sections, s)
	}
	actions := d.Actions
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	if s := bulletSection(headerActions, actions); s != "" {
		sections = append(sections, s)
	}
	return sections
}

func bulletSection(header string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, header)
	for _, item := range items {
		lines = append(lines, "• "+EscapeMarkdown(item))
	}
	return strings.Join(lines, "\n")
}

// rawSections renders an unparsed detail: an apology and the raw output. The raw text
// is split before escaping so a cut never separates a backslash from the character it
// escapes; escaping at most doubles a part, so each part stays within SendLimit.
func rawSections(d analyses.Detail) []string {
	sections := []string{EscapeMarkdown(textRawIntro)}
	for _, part := range chunk.Split(d.Raw, chunk.SendLimit/2) {
		sections = append(sections, EscapeMarkdown(part))
	}
	return sections
}

// sendLong sends text in chunks that fit the per-message limit.
func (c *Controller) sendLong(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	for _, part := range chunk.Split(text, chunk.SendLimit) {
		if err := c.messenger.SendText(ctx, chatID, part, opts); err != nil {
			return err
		}
	}
	return nil
}
