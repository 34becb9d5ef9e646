package record

import "strings"

// QuoteTXT wraps value in double quotes, escaping embedded quotes and
// backslashes.
func QuoteTXT(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// UnquoteTXT reverses QuoteTXT. Multi-string content ("a" "b") is joined
// without separator, as resolvers do. Unquoted input is returned trimmed.
func UnquoteTXT(content string) string {
	return strings.Join(SplitTXT(content), "")
}

// SplitTXT returns the character-strings of TXT content. Text outside quotes
// is treated as a single unquoted string.
func SplitTXT(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, `"`) {
		return []string{trimmed}
	}

	var (
		parts   []string
		current strings.Builder
		inQuote bool
		escaped bool
	)
	for _, r := range trimmed {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			if inQuote {
				parts = append(parts, current.String())
				current.Reset()
			}
			inQuote = !inQuote
		case inQuote:
			current.WriteRune(r)
		}
	}
	if inQuote && current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// ChunkTXT splits value into character-strings of at most 255 bytes.
func ChunkTXT(value string) []string {
	const limit = 255
	if len(value) <= limit {
		return []string{value}
	}
	var out []string
	for len(value) > limit {
		out = append(out, value[:limit])
		value = value[limit:]
	}
	if value != "" {
		out = append(out, value)
	}
	return out
}

// FormatTXT renders value as TXT content, splitting it into quoted
// character-strings of at most 255 bytes each.
func FormatTXT(value string) string {
	chunks := ChunkTXT(value)
	for i, chunk := range chunks {
		chunks[i] = QuoteTXT(chunk)
	}
	return strings.Join(chunks, " ")
}
