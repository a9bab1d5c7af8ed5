package strex

import (
	"fmt"
	"strings"
)

// RenderTemplate substitutes single-brace {name} placeholders in a template
// with values from vars. Literal braces are written as {{ and }}.
// Substitution fails on an unknown placeholder or an unbalanced brace so a
// typo in a prompt template never silently reaches the provider.
func RenderTemplate(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := tmpl[i+1 : i+1+end]
			if !validPlaceholderName(name) {
				return "", fmt.Errorf("invalid placeholder %q at offset %d", name, i)
			}
			val, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("unknown placeholder %q", name)
			}
			b.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// Placeholders extracts the {name} placeholder names embedded in a literal,
// in order of appearance. Unlike RenderTemplate it is lenient: escaped
// braces are skipped and malformed brace sequences yield no placeholder,
// because arbitrary user strings may contain stray braces.
func Placeholders(text string) []string {
	var names []string

	for i := 0; i < len(text); {
		c := text[i]
		if c == '{' {
			if i+1 < len(text) && text[i+1] == '{' {
				i += 2
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end >= 0 {
				name := text[i+1 : i+1+end]
				if validPlaceholderName(name) {
					names = append(names, name)
					i += end + 2
					continue
				}
			}
		} else if c == '}' && i+1 < len(text) && text[i+1] == '}' {
			i += 2
			continue
		}
		i++
	}

	return names
}

// UnescapeBraces resolves {{ and }} escapes to literal braces. Used when
// rendering resource text for entries with no placeholders.
func UnescapeBraces(text string) string {
	text = strings.ReplaceAll(text, "{{", "{")
	return strings.ReplaceAll(text, "}}", "}")
}

func validPlaceholderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		case c == '_':
		default:
			return false
		}
	}
	return true
}
