package llm

import "strings"

// CleanJSONBlock removes markdown code fences and conversational text around
// a JSON object or array. Models often add both even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if body := extractBalanced(text[start:]); body != "" {
		return body
	}
	return text
}

// extractBalanced returns the JSON value at the start of s up to its matching
// closing bracket, honoring string literals. It returns "" when s does not
// start with '{' or '[' or the brackets never balance.
func extractBalanced(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// FirstDigit returns the value of the first ASCII digit in text. Graders are
// asked to reply with a single 0 or 1 but sometimes wrap it in prose.
func FirstDigit(text string) (int, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			return int(text[i] - '0'), true
		}
	}
	return 0, false
}
