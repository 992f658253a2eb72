package llm

import "strings"

// repairJSON closes truncated strings, arrays and objects, drops trailing commas and
// ignores anything after the top-level value. It only handles text that starts with
// an object or array; the result still has to pass a strict decode.
func repairJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return "", false
	}

	var out strings.Builder
	out.Grow(len(s) + 8)
	var stack []byte
	inString := false
	escaped := false

loop:
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			out.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteByte(ch)
		case '{':
			stack = append(stack, '}')
			out.WriteByte(ch)
		case '[':
			stack = append(stack, ']')
			out.WriteByte(ch)
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return "", false
			}
			stack = stack[:len(stack)-1]
			dropTrailingComma(&out)
			out.WriteByte(ch)
			if len(stack) == 0 {
				break loop
			}
		default:
			out.WriteByte(ch)
		}
	}

	if inString {
		if escaped {
			trimmed := strings.TrimSuffix(out.String(), "\\")
			out.Reset()
			out.WriteString(trimmed)
		}
		out.WriteByte('"')
	}
	if len(stack) > 0 {
		dropTrailingComma(&out)
		tail := strings.TrimRight(out.String(), " \t\r\n")
		if strings.HasSuffix(tail, ":") {
			out.Reset()
			out.WriteString(tail)
			out.WriteString("null")
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out.WriteByte(stack[i])
	}
	return out.String(), true
}

func dropTrailingComma(b *strings.Builder) {
	current := strings.TrimRight(b.String(), " \t\r\n")
	if !strings.HasSuffix(current, ",") {
		return
	}
	current = strings.TrimSuffix(current, ",")
	b.Reset()
	b.WriteString(current)
}
