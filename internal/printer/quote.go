package printer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// quoteString renders s as a double-quoted JavaScript string literal.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029', utf8.RuneError:
			sb.WriteString(`\u`)
			sb.WriteString(strconv.FormatInt(int64(r)|0x10000, 16)[1:])
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\u00`)
				if r < 0x10 {
					sb.WriteByte('0')
				}
				sb.WriteString(strconv.FormatInt(int64(r), 16))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// isIdentifierName reports whether s can be written as a bare property key.
func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_':
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// needsDotGuard reports whether a numeric literal would swallow the
// following `.` of a property access.
func needsDotGuard(num string) bool {
	for i := 0; i < len(num); i++ {
		if num[i] < '0' || num[i] > '9' {
			return false
		}
	}
	return true
}
