package rewrite

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// parseState tracks where the log parser is inside one failed-test block.
type parseState int

const (
	stateSearching parseState = iota
	stateFoundFailedTest
	stateFoundExpected
	stateFoundActual
	stateAfterActual
	stateFoundStackTrace
)

// runStartSentinel is the line the test host prints at the start of each
// run. Seeing it again means the log concatenates a retried run, so earlier
// results must be discarded.
const runStartSentinel = "Starting test execution, please wait..."

// Structural markers, matched as line suffixes after tag stripping.
const (
	markFail       = " [FAIL]"
	markExpected   = "Expected:"
	markActual     = "Actual:"
	markDiff       = "Diff:"
	markStackTrace = "Stack Trace:"
)

// stackFrameRe captures a stack-trace entry: file path, (line,column), and
// the dotted qualified method reference.
var stackFrameRe = regexp.MustCompile(`^(.*)\((\d+),(\d+)\): at ([^(]+)`)

// SourceLocation identifies where a failing assertion occurred. It is the
// deepest stack frame belonging to the test method itself: the last line of
// the trace that still parses as a frame.
type SourceLocation struct {
	FilePath   string
	Line       int // 1-based
	Column     int
	Namespace  string
	ClassName  string
	MethodName string
}

// ParsingResult is one failed test extracted from the log. ExpectedLines may
// be empty, meaning the assertion call currently takes no arguments.
type ParsingResult struct {
	ExpectedLines []string
	ActualText    string
	Location      SourceLocation
}

// Parser extracts one ParsingResult per failed test from a line-oriented
// test log. It is a single-pass pull iterator: Next consumes input lines on
// demand and suspends after each emitted result. The input stream is
// consumed destructively; a Parser is not restartable.
type Parser struct {
	scanner  *bufio.Scanner
	state    parseState
	expected []string
	actual   strings.Builder
	frame    *SourceLocation
	pushback *string

	// OnRunStart, when set, is invoked each time the run-start sentinel
	// line is seen, so the caller can discard results accumulated from an
	// earlier run in the same log.
	OnRunStart func()
}

// NewParser returns a parser reading the log from r.
func NewParser(r io.Reader) *Parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Parser{scanner: sc}
}

// Next returns the next failed-test record, or nil once the log is
// exhausted. A non-nil error is fatal: the log is structurally outside the
// parser's contract.
func (p *Parser) Next() (*ParsingResult, error) {
	for {
		line, ok := p.nextLine()
		if !ok {
			if err := p.scanner.Err(); err != nil {
				return nil, err
			}
			// End of input doubles as the stack-trace terminator.
			if p.state == stateFoundStackTrace && p.frame != nil {
				return p.emit(), nil
			}
			return nil, nil
		}
		res, err := p.consume(line)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
}

// nextLine yields the pushed-back line if present, otherwise reads and
// normalizes a fresh one.
func (p *Parser) nextLine() (string, bool) {
	if p.pushback != nil {
		line := *p.pushback
		p.pushback = nil
		return line, true
	}
	if !p.scanner.Scan() {
		return "", false
	}
	return stripTag(p.scanner.Text()), true
}

// consume feeds one normalized line through the state machine.
func (p *Parser) consume(line string) (*ParsingResult, error) {
	switch p.state {
	case stateSearching:
		if line == runStartSentinel {
			if p.OnRunStart != nil {
				p.OnRunStart()
			}
			return nil, nil
		}
		if strings.HasSuffix(line, markFail) {
			p.state = stateFoundFailedTest
		}
	case stateFoundFailedTest:
		if strings.HasSuffix(line, markExpected) {
			p.state = stateFoundExpected
			p.expected = p.expected[:0]
		} else if strings.HasSuffix(line, markActual) {
			// Some assertions print no expected block at all.
			p.state = stateFoundActual
			p.expected = p.expected[:0]
			p.actual.Reset()
		}
	case stateFoundExpected:
		if strings.HasSuffix(line, markActual) {
			p.state = stateFoundActual
			p.actual.Reset()
		} else if trimmed := strings.TrimLeft(line, " \t"); trimmed != "" {
			p.expected = append(p.expected, trimmed)
		}
	case stateFoundActual:
		if strings.HasSuffix(line, markDiff) {
			p.state = stateAfterActual
		} else {
			p.actual.WriteString(strings.TrimLeft(line, " \t"))
			p.actual.WriteString("\n")
		}
	case stateAfterActual:
		if strings.HasSuffix(line, markStackTrace) {
			p.state = stateFoundStackTrace
			p.frame = nil
		}
	case stateFoundStackTrace:
		loc, ok, err := parseFrame(line)
		if err != nil {
			return nil, err
		}
		if ok {
			// Keep overwriting so the last parseable frame wins;
			// it is the entry point into the test method, below
			// the assertion helper's internal frames.
			p.frame = loc
			return nil, nil
		}
		// The terminating line also serves as the next token for
		// Searching, so push it back instead of consuming it.
		p.pushback = &line
		if p.frame == nil {
			p.state = stateSearching
			return nil, nil
		}
		return p.emit(), nil
	default:
		return nil, &Error{
			Code:    CodeInternalState,
			Message: fmt.Sprintf("parser reached undefined state %d", p.state),
		}
	}
	return nil, nil
}

// emit packages the accumulated buffers into a result and rewinds the state
// machine for the next failed test.
func (p *Parser) emit() *ParsingResult {
	res := &ParsingResult{
		ExpectedLines: append([]string(nil), p.expected...),
		ActualText:    p.actual.String(),
		Location:      *p.frame,
	}
	p.expected = p.expected[:0]
	p.actual.Reset()
	p.frame = nil
	p.state = stateSearching
	return res
}

// parseFrame matches one stack-trace line. The qualified reference's last two
// dotted segments are the class and method; everything before them is the
// namespace. Numeric fields that fail to parse are a fatal format error.
func parseFrame(line string) (*SourceLocation, bool, error) {
	m := stackFrameRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}
	qualified := strings.TrimSpace(m[4])
	parts := strings.Split(qualified, ".")
	if len(parts) < 2 {
		return nil, false, nil
	}
	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false, &Error{
			Code:    CodeMalformedFrame,
			Message: fmt.Sprintf("invalid line number in stack frame %q: %v", line, err),
		}
	}
	column, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false, &Error{
			Code:    CodeMalformedFrame,
			Message: fmt.Sprintf("invalid column in stack frame %q: %v", line, err),
		}
	}
	return &SourceLocation{
		FilePath:   strings.TrimSpace(m[1]),
		Line:       lineNo,
		Column:     column,
		Namespace:  strings.Join(parts[:len(parts)-2], "."),
		ClassName:  parts[len(parts)-2],
		MethodName: parts[len(parts)-1],
	}, true, nil
}

// stripTag removes a fixed-format logger tag ("[xUnit.net 00:00:01.23]")
// from the front of a raw log line: everything through the first ']' goes,
// then leading whitespace. Untagged lines are only whitespace-trimmed.
func stripTag(raw string) string {
	if strings.HasPrefix(raw, "[") {
		if i := strings.IndexByte(raw, ']'); i >= 0 {
			return strings.TrimLeft(raw[i+1:], " \t")
		}
	}
	return strings.TrimSpace(raw)
}
