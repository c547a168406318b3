package rewrite

import "errors"

// Error represents a fatal failure while consuming a test log: the input no
// longer matches the format the parser is contracted to understand. It
// satisfies the error interface so it can be returned directly from Parser
// methods.
type Error struct {
	Message string
	Code    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return "log format error"
}

// Error codes attached to fatal parser failures.
const (
	// CodeMalformedFrame marks a stack-trace line whose numeric fields
	// could not be parsed.
	CodeMalformedFrame = "MALFORMED_FRAME"
	// CodeInternalState marks a state-machine value outside the defined
	// state set.
	CodeInternalState = "INTERNAL_STATE"
)

// Recoverable locator failures. Callers are expected to warn and skip the
// affected result rather than abort the run.
var (
	// ErrFileTooShort means the source file ends before the line the
	// stack trace reported.
	ErrFileTooShort = errors.New("file ends before the reported line")
	// ErrClueNotFound means no assertion call was found scanning forward
	// from the reported line.
	ErrClueNotFound = errors.New("no assertion call found near the reported line")
	// ErrNoIndentation means the line after the assertion call carries no
	// indentation, so the call shape is not recognized.
	ErrNoIndentation = errors.New("expected block is not indented")
	// ErrUnexpectedLine means a non-comment, non-blank line inside the
	// block did not match the next expected line.
	ErrUnexpectedLine = errors.New("unexpected line in expected block")
	// ErrUnexpectedEOF means the file ended while the block was still
	// being scanned.
	ErrUnexpectedEOF = errors.New("file ends inside the expected block")
)
