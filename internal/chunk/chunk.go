package chunk

import (
	"strings"
	"unicode/utf16"
)

const (
	// TelegramLimit is the hard per-message limit enforced by the Bot API.
	TelegramLimit = 4096
	// SendLimit leaves headroom below TelegramLimit for markup added by the sender.
	SendLimit = 4000

	paragraphSep = "\n\n"
	lineSep      = "\n"
)

// Split breaks text into ordered segments of at most limit UTF-16 code units, the unit
// Telegram measures message length in.
//
// Paragraphs (separated by a blank line) are trimmed, whitespace-only ones are
// dropped, and the rest are packed greedily joined by "\n\n". A paragraph that does
// not fit flushes the buffer and is packed line by line joined by "\n"; a single line
// longer than limit is cut into fixed-size slices. Text already within limit is
// returned as the only segment, unchanged. A non-positive limit disables splitting.
func Split(text string, limit int) []string {
	if limit <= 0 || textLen(text) <= limit {
		return []string{text}
	}

	var parts []string
	buf := ""
	flush := func() {
		if buf != "" {
			parts = append(parts, buf)
			buf = ""
		}
	}

	for _, paragraph := range strings.Split(text, paragraphSep) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		candidate := join(buf, paragraphSep, paragraph)
		if textLen(candidate) <= limit {
			buf = candidate
			continue
		}

		flush()
		parts = append(parts, splitLines(paragraph, limit)...)
	}
	flush()
	return parts
}

func splitLines(paragraph string, limit int) []string {
	var parts []string
	lineBuf := ""
	for _, line := range strings.Split(paragraph, lineSep) {
		line = strings.TrimRight(line, " \t\r")
		candidate := join(lineBuf, lineSep, line)
		if textLen(candidate) <= limit {
			lineBuf = candidate
			continue
		}
		if lineBuf != "" {
			parts = append(parts, lineBuf)
			lineBuf = ""
		}
		if textLen(line) <= limit {
			lineBuf = line
			continue
		}
		parts = append(parts, hardCut(line, limit)...)
	}
	if lineBuf != "" {
		parts = append(parts, lineBuf)
	}
	return parts
}

func hardCut(line string, limit int) []string {
	var out []string
	var b strings.Builder
	units := 0
	for _, r := range line {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit && units > 0 {
			out = append(out, b.String())
			b.Reset()
			units = 0
		}
		b.WriteRune(r)
		units += n
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func join(buf, sep, next string) string {
	if buf == "" {
		return next
	}
	return buf + sep + next
}

// textLen counts UTF-16 code units; characters outside the BMP count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		if units := utf16.RuneLen(r); units > 0 {
			n += units
		} else {
			n++
		}
	}
	return n
}
