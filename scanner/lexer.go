package scanner

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// rawLiteral is one candidate literal as found by the lexer, before
// fingerprinting and module resolution.
type rawLiteral struct {
	text        string // decoded content
	raw         string // exact source slice to replace (literal + .format call)
	line        int    // 1-based line of the opening quote
	offset      int    // byte offset of the opening quote
	callContext string // enclosing call name, "" at top level
	params      []strex.Param
}

type lexConfig struct {
	logCalls       []string
	resourcePrefix string
	nativeRanges   []*unicode.RangeTable
}

// lexer tokenizes one source file. It understands line and nested block
// comments, escaped quotes, char literals, triple-quoted raw strings and
// ${...} interpolation, and tracks the enclosing call name so logging-call
// arguments can be excluded and format-call receivers identified.
type lexer struct {
	src  string
	cfg  lexConfig
	pos  int
	line int

	// pending is the identifier chain read immediately before the current
	// position; it becomes the call name if the next token is '('.
	pending string
	// callStack holds the names of the calls whose argument lists are open.
	callStack []string

	literals []rawLiteral
	refs     []strex.ResourceRef
}

func newLexer(src string, cfg lexConfig) *lexer {
	return &lexer{src: src, cfg: cfg, line: 1}
}

func (l *lexer) run() ([]rawLiteral, []strex.ResourceRef) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == '/' && l.peek(1) == '/':
			l.skipLineComment()
		case c == '/' && l.peek(1) == '*':
			l.skipBlockComment()
		case c == '"':
			l.lexString()
		case c == '\'':
			l.lexCharLiteral()
		case isIdentStart(rune(c)):
			l.lexIdentChain()
		case c == '(':
			l.callStack = append(l.callStack, l.pending)
			l.pending = ""
			l.pos++
		case c == ')':
			if n := len(l.callStack); n > 0 {
				l.callStack = l.callStack[:n-1]
			}
			l.pending = ""
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == ',':
			l.pending = ""
			l.pos++
		default:
			l.pending = ""
			l.pos++
		}
	}
	return l.literals, l.refs
}

func (l *lexer) peek(ahead int) byte {
	if l.pos+ahead < len(l.src) {
		return l.src[l.pos+ahead]
	}
	return 0
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	l.pending = ""
}

// skipBlockComment handles Kotlin's nested block comments.
func (l *lexer) skipBlockComment() {
	depth := 0
	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '/' && l.peek(1) == '*':
			depth++
			l.pos += 2
		case l.src[l.pos] == '*' && l.peek(1) == '/':
			depth--
			l.pos += 2
			if depth == 0 {
				l.pending = ""
				return
			}
		case l.src[l.pos] == '\n':
			l.line++
			l.pos++
		default:
			l.pos++
		}
	}
	l.pending = ""
}

func (l *lexer) lexCharLiteral() {
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		l.pos++
		if c == '\'' || c == '\n' {
			if c == '\n' {
				l.line++
			}
			break
		}
	}
	l.pending = ""
}

// lexIdentChain reads a dotted identifier chain such as Log.d or
// ResStrings.hi, recording resource accessor references.
func (l *lexer) lexIdentChain() {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if isIdentPart(r) {
			l.pos += size
			continue
		}
		if r == '.' && l.pos+size < len(l.src) {
			next, _ := utf8.DecodeRuneInString(l.src[l.pos+size:])
			if isIdentStart(next) {
				l.pos += size
				continue
			}
		}
		break
	}

	chain := l.src[start:l.pos]
	l.pending = chain

	if l.cfg.resourcePrefix != "" && strings.HasPrefix(chain, l.cfg.resourcePrefix) {
		name := chain[len(l.cfg.resourcePrefix):]
		if head, _, found := strings.Cut(name, "."); found {
			name = head
		}
		if name != "" {
			l.refs = append(l.refs, strex.ResourceRef{Name: name, Line: line})
		}
	}
}

// lexString lexes a double-quoted or triple-quoted string starting at the
// current position and, when the decoded text is a native-language
// candidate, records it with its call context and bound format parameters.
func (l *lexer) lexString() {
	start := l.pos
	line := l.line
	enclosing := l.enclosingCall()

	var text string
	if strings.HasPrefix(l.src[l.pos:], `"""`) {
		text = l.lexRawString()
	} else {
		text = l.lexQuotedString()
	}
	end := l.pos
	l.pending = ""

	if l.isLogCall(enclosing) {
		return
	}
	if !l.containsNative(text) {
		return
	}

	raw := l.src[start:end]
	var params []strex.Param
	if names := strex.Placeholders(text); len(names) > 0 {
		args, formatEnd, ok := l.parseFormatCall(end)
		if ok {
			params = bindParams(names, args)
			raw = l.src[start:formatEnd]
			l.pos = formatEnd
		} else {
			params = bindParams(names, nil)
		}
	}

	l.literals = append(l.literals, rawLiteral{
		text:        text,
		raw:         raw,
		line:        line,
		offset:      start,
		callContext: enclosing,
		params:      params,
	})
}

// lexRawString consumes a triple-quoted string; no escapes apply.
func (l *lexer) lexRawString() string {
	l.pos += 3
	start := l.pos
	for l.pos < len(l.src) {
		if strings.HasPrefix(l.src[l.pos:], `"""`) {
			text := l.src[start:l.pos]
			l.pos += 3
			return text
		}
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	return l.src[start:]
}

// lexQuotedString consumes a normal string literal, decoding escapes and
// copying ${...} interpolations through verbatim. A newline terminates an
// unclosed literal so one bad line cannot swallow the rest of the file.
func (l *lexer) lexQuotedString() string {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '"':
			l.pos++
			return b.String()
		case c == '\n':
			l.line++
			l.pos++
			return b.String()
		case c == '\\':
			l.decodeEscape(&b)
		case c == '$' && l.peek(1) == '{':
			l.copyInterpolation(&b)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return b.String()
}

func (l *lexer) decodeEscape(b *strings.Builder) {
	if l.pos+1 >= len(l.src) {
		l.pos++
		return
	}
	e := l.src[l.pos+1]
	switch e {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case '\\', '"', '\'', '$':
		b.WriteByte(e)
	case 'u':
		if l.pos+6 <= len(l.src) {
			if v, err := strconv.ParseUint(l.src[l.pos+2:l.pos+6], 16, 32); err == nil {
				b.WriteRune(rune(v))
				l.pos += 6
				return
			}
		}
		b.WriteString(`\u`)
	default:
		b.WriteByte('\\')
		b.WriteByte(e)
	}
	l.pos += 2
}

// copyInterpolation copies a ${...} block verbatim, tracking brace depth
// and skipping over nested string literals.
func (l *lexer) copyInterpolation(b *strings.Builder) {
	start := l.pos
	l.pos += 2 // ${
	depth := 1
	for l.pos < len(l.src) && depth > 0 {
		switch l.src[l.pos] {
		case '{':
			depth++
			l.pos++
		case '}':
			depth--
			l.pos++
		case '"':
			l.skipNestedString()
		case '\n':
			l.line++
			l.pos++
		default:
			l.pos++
		}
	}
	b.WriteString(l.src[start:l.pos])
}

func (l *lexer) skipNestedString() {
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		l.pos++
		if c == '"' || c == '\n' {
			if c == '\n' {
				l.line++
			}
			return
		}
	}
}

// parseFormatCall parses a trailing .format(...) call starting at pos.
// Returns the raw top-level argument expressions and the index just past
// the closing parenthesis.
func (l *lexer) parseFormatCall(pos int) (args []string, end int, ok bool) {
	i := pos
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		i++
	}
	if !strings.HasPrefix(l.src[i:], ".format") {
		return nil, 0, false
	}
	i += len(".format")
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		i++
	}
	if i >= len(l.src) || l.src[i] != '(' {
		return nil, 0, false
	}
	i++ // '('

	depth := 1
	newlines := 0
	argStart := i
	flush := func(to int) {
		arg := strings.TrimSpace(l.src[argStart:to])
		if arg != "" {
			args = append(args, arg)
		}
	}
	for i < len(l.src) {
		switch c := l.src[i]; c {
		case '(', '[':
			depth++
			i++
		case ')', ']':
			depth--
			if depth == 0 {
				flush(i)
				l.line += newlines
				return args, i + 1, true
			}
			i++
		case ',':
			if depth == 1 {
				flush(i)
				argStart = i + 1
			}
			i++
		case '"':
			i = l.skipStringAt(i)
		case '\'':
			i = l.skipCharAt(i)
		case '\n':
			newlines++
			i++
		default:
			i++
		}
	}
	return nil, 0, false
}

func (l *lexer) skipStringAt(i int) int {
	i++ // opening quote
	for i < len(l.src) {
		c := l.src[i]
		if c == '\\' {
			i += 2
			continue
		}
		i++
		if c == '"' || c == '\n' {
			return i
		}
	}
	return i
}

func (l *lexer) skipCharAt(i int) int {
	i++
	for i < len(l.src) {
		c := l.src[i]
		if c == '\\' {
			i += 2
			continue
		}
		i++
		if c == '\'' || c == '\n' {
			return i
		}
	}
	return i
}

func (l *lexer) enclosingCall() string {
	if n := len(l.callStack); n > 0 {
		return l.callStack[n-1]
	}
	return ""
}

func (l *lexer) isLogCall(call string) bool {
	if call == "" {
		return false
	}
	for _, lc := range l.cfg.logCalls {
		if call == lc || strings.HasSuffix(call, "."+lc) {
			return true
		}
	}
	return false
}

func (l *lexer) containsNative(text string) bool {
	for _, r := range text {
		for _, rt := range l.cfg.nativeRanges {
			if unicode.Is(rt, r) {
				return true
			}
		}
	}
	return false
}

// bindParams maps placeholder names to format-call argument expressions.
// Named arguments bind by name; remaining placeholders consume positional
// arguments in order. An unmatched placeholder keeps an empty value so the
// writer can still emit its marker.
func bindParams(names []string, args []string) []strex.Param {
	named := make(map[string]string)
	var positional []string
	for _, arg := range args {
		if name, expr, ok := splitNamedArg(arg); ok {
			named[name] = expr
		} else {
			positional = append(positional, arg)
		}
	}

	seen := make(map[string]bool, len(names))
	var params []strex.Param
	nextPos := 0
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		value, ok := named[name]
		if !ok && nextPos < len(positional) {
			value = positional[nextPos]
			nextPos++
		}
		params = append(params, strex.Param{Name: name, Value: value})
	}
	return params
}

// splitNamedArg splits a `name = expr` argument. Comparison operators and
// nested expressions must not be mistaken for named arguments.
func splitNamedArg(arg string) (name, expr string, ok bool) {
	eq := strings.IndexByte(arg, '=')
	if eq <= 0 || eq == len(arg)-1 {
		return "", "", false
	}
	if arg[eq+1] == '=' { // ==
		return "", "", false
	}
	switch arg[eq-1] {
	case '!', '<', '>':
		return "", "", false
	}
	name = strings.TrimSpace(arg[:eq])
	if !isIdentName(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(arg[eq+1:]), true
}

func isIdentName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if i > 0 && !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
