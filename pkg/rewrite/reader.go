package rewrite

import "strings"

// LineReader is a cursor over an in-memory text buffer. It exposes the
// current line without its terminator, the terminator bytes themselves, and
// the byte offsets delimiting the line, and it supports peeking one line
// ahead without moving the cursor.
type LineReader struct {
	text  string
	start int
	end   int
	eol   string
}

// NewLineReader returns a reader positioned on the first line of text.
func NewLineReader(text string) *LineReader {
	r := &LineReader{text: text}
	r.measure(0)
	return r
}

// measure computes the span and terminator of the line starting at offset.
func (r *LineReader) measure(offset int) {
	r.start = offset
	i := strings.IndexByte(r.text[offset:], '\n')
	if i < 0 {
		r.end = len(r.text)
		r.eol = ""
		return
	}
	end := offset + i
	if end > offset && r.text[end-1] == '\r' {
		r.end = end - 1
		r.eol = "\r\n"
		return
	}
	r.end = end
	r.eol = "\n"
}

// Line returns the current line without its terminator.
func (r *LineReader) Line() string { return r.text[r.start:r.end] }

// Start returns the byte offset of the first character of the current line.
func (r *LineReader) Start() int { return r.start }

// End returns the byte offset of the current line's terminator, or the
// buffer length when the last line is unterminated.
func (r *LineReader) End() int { return r.end }

// EOL returns the current line's terminator bytes ("" on an unterminated
// final line).
func (r *LineReader) EOL() string { return r.eol }

// Next advances to the following line. It reports false once the buffer is
// exhausted, leaving the cursor in place.
func (r *LineReader) Next() bool {
	next := r.end + len(r.eol)
	if next >= len(r.text) {
		return false
	}
	r.measure(next)
	return true
}

// Peek returns the line after the current one without advancing.
func (r *LineReader) Peek() (string, bool) {
	next := r.end + len(r.eol)
	if next >= len(r.text) {
		return "", false
	}
	saved := *r
	r.measure(next)
	line := r.Line()
	*r = saved
	return line, true
}

// SeekLine positions the cursor on the 1-based line n. It reports false when
// the buffer holds fewer lines. The reader must still be on its first line.
func (r *LineReader) SeekLine(n int) bool {
	for cur := 1; cur < n; cur++ {
		if !r.Next() {
			return false
		}
	}
	return true
}
