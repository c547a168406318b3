package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Replacement describes a span of a file's original content, [Start, End]
// inclusive, and the text that must take its place. Spans are expressed in
// the coordinates of the untouched file so multiple replacements in one file
// compose before any edit is applied.
type Replacement struct {
	Start  int
	End    int
	Target string
}

// assertionClues are the call-site tokens used to find the assertion whose
// argument list encodes the expected diagnostics. The stack trace may point a
// line or two away from where the argument list begins, so the locator scans
// forward until one of these appears.
var assertionClues = []string{"Diagnostics(", "Verify("}

// closerRe matches the punctuation that closes an assertion call: zero or
// more closing parentheses followed by a semicolon.
var closerRe = regexp.MustCompile(`^\)*;$`)

// indentUnit is one indentation level in the targeted sources.
const indentUnit = "    "

// Locate finds the expected block for one parsing result inside the cached
// file content and computes its replacement. Every returned error is
// recoverable: the caller should warn and skip this result, leaving the file
// untouched for this particular test.
func Locate(content string, res *ParsingResult) (Replacement, error) {
	r := NewLineReader(content)
	target := res.Location.Line - 1
	if target < 1 {
		target = 1
	}
	if !r.SeekLine(target) {
		return Replacement{}, fmt.Errorf("%w: fewer than %d lines", ErrFileTooShort, target)
	}
	clue := ""
	for {
		if clue = matchClue(r.Line()); clue != "" {
			break
		}
		if !r.Next() {
			return Replacement{}, fmt.Errorf("%w: scanned from line %d", ErrClueNotFound, target)
		}
	}
	if len(res.ExpectedLines) == 0 {
		return insertBlock(r, clue, res.ActualText)
	}
	return replaceBlock(r, res)
}

// replaceBlock handles the common case: the call already has an argument
// list, anchored on the line after the clue line. The block consists of lines
// indented exactly one level deeper than nothing at all would suggest: they
// start with the first line's indentation and the character right after it is
// not whitespace. Blank lines and comment lines ride along. Non-comment lines
// must match the expected lines reconstructed from the log, except that the
// file's line may carry the call's closing punctuation as a trailing extra.
func replaceBlock(r *LineReader, res *ParsingResult) (Replacement, error) {
	clueEnd := r.End()
	if !r.Next() {
		return Replacement{}, fmt.Errorf("%w: nothing follows the assertion call", ErrUnexpectedEOF)
	}
	first := r.Line()
	indent := leadingWhitespace(first)
	if indent == "" {
		return Replacement{}, fmt.Errorf("%w: %q", ErrNoIndentation, strings.TrimSpace(first))
	}
	eol := r.EOL()
	if eol == "" {
		eol = "\n"
	}

	start := r.Start()
	end := r.End()
	expIdx := 0
	suffix := ""
	suffixOwnLine := false

scan:
	for {
		stripped := strings.TrimSpace(r.Line())
		switch {
		case stripped == "":
			// blank lines inside the block are absorbed
		case !partOfBlock(r.Line(), indent):
			break scan
		case closerRe.MatchString(stripped):
			// the call's closer sits on its own line inside the block
			suffix = stripped
			suffixOwnLine = true
		case strings.HasPrefix(stripped, "//"):
			// comment lines belong to the block and are replaced with it
		default:
			if expIdx >= len(res.ExpectedLines) {
				return Replacement{}, fmt.Errorf("%w: %q", ErrUnexpectedLine, stripped)
			}
			tail, ok := matchExpected(stripped, strings.TrimSpace(res.ExpectedLines[expIdx]))
			if !ok {
				return Replacement{}, fmt.Errorf("%w: %q", ErrUnexpectedLine, stripped)
			}
			expIdx++
			if tail != "" {
				suffix = tail
				suffixOwnLine = false
			}
		}
		end = r.End()
		if suffix != "" {
			// closing punctuation ends the call, and with it the block
			break scan
		}
		if !r.Next() {
			return Replacement{}, fmt.Errorf("%w: block still open at end of file", ErrUnexpectedEOF)
		}
	}

	if expIdx != len(res.ExpectedLines) {
		return Replacement{}, fmt.Errorf("%w: matched %d of %d expected lines", ErrUnexpectedLine, expIdx, len(res.ExpectedLines))
	}

	if strings.TrimSpace(res.ActualText) == "" {
		// The test now expects nothing: collapse the argument list so the
		// call closes right after its opening parenthesis.
		if suffix != "" {
			return Replacement{Start: clueEnd, End: end - 1, Target: suffix}, nil
		}
		// The closer sits outside the block, on the line that ended the
		// scan; absorb it into the deletion.
		closer := strings.TrimSpace(r.Line())
		if closerRe.MatchString(closer) {
			return Replacement{Start: clueEnd, End: r.End() - 1, Target: closer}, nil
		}
		return Replacement{}, fmt.Errorf("%w: no closing punctuation after empty block", ErrUnexpectedLine)
	}

	target := renderBlock(res.ActualText, indent, eol, suffix, suffixOwnLine)
	return Replacement{Start: start, End: end - 1, Target: target}, nil
}

// insertBlock handles a call that currently takes no arguments, e.g.
// Verify(). The new block goes between the opening parenthesis and the
// existing closer, indented one level deeper than the call itself.
func insertBlock(r *LineReader, clue, actual string) (Replacement, error) {
	if strings.TrimSpace(actual) == "" {
		return Replacement{}, fmt.Errorf("%w: nothing to insert", ErrUnexpectedLine)
	}
	line := r.Line()
	paren := strings.Index(line, clue) + len(clue) - 1
	inner := leadingWhitespace(line) + indentUnit
	eol := r.EOL()
	if eol == "" {
		eol = "\n"
	}
	rest := strings.TrimSpace(line[paren+1:])
	if closerRe.MatchString(rest) {
		// Verify(); on one line: splice the block between the parentheses
		// and re-attach the closer to the block's last line.
		return Replacement{
			Start:  r.Start() + paren + 1,
			End:    r.End() - 1,
			Target: eol + renderBlock(actual, inner, eol, rest, false),
		}, nil
	}
	if rest == "" {
		// The opening parenthesis ends the line; the closer should stand
		// one line ahead and stays where it is.
		next, ok := r.Peek()
		if !ok {
			return Replacement{}, fmt.Errorf("%w: nothing follows the assertion call", ErrUnexpectedEOF)
		}
		if !closerRe.MatchString(strings.TrimSpace(next)) {
			return Replacement{}, fmt.Errorf("%w: %q", ErrUnexpectedLine, strings.TrimSpace(next))
		}
		return Replacement{
			Start:  r.End(),
			End:    r.End() + len(eol) - 1,
			Target: eol + renderBlock(actual, inner, eol, "", false) + eol,
		}, nil
	}
	return Replacement{}, fmt.Errorf("%w: %q", ErrUnexpectedLine, rest)
}

// renderBlock re-indents the actual text to the block's indentation,
// normalizes terminators to the file's style, and restores the call's
// closing punctuation in its original layout.
func renderBlock(actual, indent, eol, suffix string, suffixOwnLine bool) string {
	lines := strings.Split(strings.TrimRight(actual, "\n"), "\n")
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+line)
	}
	if suffix != "" {
		if suffixOwnLine {
			out = append(out, indent+suffix)
		} else {
			for i := len(out) - 1; i >= 0; i-- {
				if out[i] != "" {
					out[i] += suffix
					break
				}
			}
		}
	}
	return strings.Join(out, eol)
}

// matchExpected compares an indent-stripped file line against the next
// expected line from the log. The file line may extend past the expected
// text by a separator comma or by the call's closing punctuation; the latter
// is returned as the tail to preserve.
func matchExpected(got, want string) (tail string, ok bool) {
	if !strings.HasPrefix(got, want) {
		return "", false
	}
	tail = got[len(want):]
	if tail == "" || tail == "," {
		return "", true
	}
	if closerRe.MatchString(tail) {
		return tail, true
	}
	return "", false
}

// partOfBlock reports whether line sits exactly one indentation level inside
// the block: it starts with the block's indentation and the character
// immediately after it is not itself whitespace. Deeper continuations fail
// this check and terminate the block.
func partOfBlock(line, indent string) bool {
	if !strings.HasPrefix(line, indent) {
		return false
	}
	rest := line[len(indent):]
	return rest != "" && rest[0] != ' ' && rest[0] != '\t'
}

// matchClue returns the assertion-call token found on the line, if any.
func matchClue(line string) string {
	for _, clue := range assertionClues {
		if strings.Contains(line, clue) {
			return clue
		}
	}
	return ""
}

// leadingWhitespace returns the run of spaces and tabs opening the line.
func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}
