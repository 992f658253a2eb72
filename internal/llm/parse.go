package llm

import (
	"encoding/json"
	"strings"
)

// ParseStage reports which recovery step produced the data.
type ParseStage int

const (
	StageFailed ParseStage = iota
	StageDirect
	StageFenced
)

// ParseResult is the outcome of recovering a JSON object from model output.
// Raw always holds the original, untouched text.
type ParseResult struct {
	Data  map[string]any
	Raw   string
	OK    bool
	Stage ParseStage
}

// ParseJSON recovers a JSON object from raw model output.
//
// Control characters (C0 and C1) are stripped and the text is decoded directly,
// repairing truncation and trailing commas when needed. Failing that, the last
// ```json fenced block is decoded strictly. Failing that, the result has OK=false
// and an empty Data map.
func ParseJSON(raw string) ParseResult {
	clean := strings.TrimSpace(StripControl(raw))
	if data, ok := decodeObject(clean); ok {
		return ParseResult{Data: data, Raw: raw, OK: true, Stage: StageDirect}
	}
	if repaired, ok := repairJSON(clean); ok {
		if data, ok := decodeObject(repaired); ok {
			return ParseResult{Data: data, Raw: raw, OK: true, Stage: StageDirect}
		}
	}

	if body, ok := fencedJSON(raw); ok {
		if data, ok := decodeObject(strings.TrimSpace(body)); ok {
			return ParseResult{Data: data, Raw: raw, OK: true, Stage: StageFenced}
		}
	}

	return ParseResult{Data: map[string]any{}, Raw: raw, OK: false, Stage: StageFailed}
}

// StripControl removes characters in U+0000–U+001F and U+007F–U+009F.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}

// fencedJSON returns the interior of the last ```json block that has a closing fence.
func fencedJSON(raw string) (string, bool) {
	const fence = "```"
	start := -1
	for i := 0; i+len(fence)+4 <= len(raw); i++ {
		if raw[i:i+len(fence)] == fence && strings.EqualFold(raw[i+len(fence):i+len(fence)+4], "json") {
			start = i + len(fence) + 4
		}
	}
	if start < 0 {
		return "", false
	}
	rest := raw[start:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
