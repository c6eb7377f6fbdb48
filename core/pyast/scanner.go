package pyast

import "fmt"

// ParseError reports source text the scanner or import parser could not make
// sense of. Whether it is fatal is the caller's policy, not ours.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// statement is one logical line of code with comments stripped, string
// literals blanked, and continuations joined.
type statement struct {
	Text string
	Line int
}

const (
	stateCode = iota
	stateShortString
	stateLongString
)

// scanStatements splits raw source into logical statements. String literal
// contents and comments are dropped so that import-like text inside them can
// never be mistaken for a real import. Bracket nesting and backslash
// continuations join physical lines into one statement; semicolons split one
// physical line into several.
func scanStatements(path string, src []byte) ([]statement, error) {
	var stmts []statement
	var buf []byte

	state := stateCode
	line := 1
	stmtLine := 1
	depth := 0
	var quote byte
	openLine := 0

	flush := func() {
		text := trimBlank(buf)
		if text != "" {
			stmts = append(stmts, statement{Text: text, Line: stmtLine})
		}
		buf = buf[:0]
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch state {
		case stateCode:
			switch c {
			case '\n':
				line++
				if depth > 0 {
					buf = append(buf, ' ')
				} else {
					flush()
					stmtLine = line
				}
			case '#':
				for i+1 < len(src) && src[i+1] != '\n' {
					i++
				}
			case '\\':
				if i+1 < len(src) && src[i+1] == '\n' {
					i++
					line++
					buf = append(buf, ' ')
				} else if i+2 < len(src) && src[i+1] == '\r' && src[i+2] == '\n' {
					i += 2
					line++
					buf = append(buf, ' ')
				} else {
					buf = append(buf, c)
				}
			case '\'', '"':
				quote = c
				openLine = line
				if i+2 < len(src) && src[i+1] == c && src[i+2] == c {
					i += 2
					state = stateLongString
				} else {
					state = stateShortString
				}
			case '(', '[', '{':
				depth++
				buf = append(buf, c)
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
				buf = append(buf, c)
			case '\r':
				// Swallowed; the '\n' that follows does the work.
			default:
				buf = append(buf, c)
			}

		case stateShortString:
			switch c {
			case '\\':
				if i+2 < len(src) && src[i+1] == '\r' && src[i+2] == '\n' {
					i += 2
					line++
				} else if i+1 < len(src) {
					if src[i+1] == '\n' {
						line++
					}
					i++
				}
			case quote:
				state = stateCode
			case '\n':
				return nil, &ParseError{Path: path, Line: line, Msg: "unterminated string literal"}
			}

		case stateLongString:
			switch c {
			case '\\':
				if i+1 < len(src) {
					if src[i+1] == '\n' {
						line++
					}
					i++
				}
			case quote:
				if i+2 < len(src) && src[i+1] == quote && src[i+2] == quote {
					i += 2
					state = stateCode
				}
			case '\n':
				line++
			}
		}
	}

	if state != stateCode {
		return nil, &ParseError{Path: path, Line: openLine, Msg: "unterminated string literal at end of file"}
	}
	if depth > 0 {
		return nil, &ParseError{Path: path, Line: stmtLine, Msg: "unclosed bracket at end of file"}
	}

	flush()
	return splitSemicolons(stmts), nil
}

// splitSemicolons breaks "import a; import b" style compound lines apart.
// Semicolons inside brackets never reach here because bracket contents of
// import statements hold only names and commas.
func splitSemicolons(stmts []statement) []statement {
	var out []statement
	for _, s := range stmts {
		start := 0
		for i := 0; i <= len(s.Text); i++ {
			if i == len(s.Text) || s.Text[i] == ';' {
				part := trimBlank([]byte(s.Text[start:i]))
				if part != "" {
					out = append(out, statement{Text: part, Line: s.Line})
				}
				start = i + 1
			}
		}
	}
	return out
}

func trimBlank(b []byte) string {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}
	return string(b[start:end])
}
