package rewrite

import (
	"context"
	"io"
)

// testKey identifies a test method for deduplication across one log.
type testKey struct {
	namespace string
	class     string
	method    string
}

// Summary reports what one run accomplished.
type Summary struct {
	Updated int      // replacements queued and applied
	Skipped int      // results dropped with a warning (duplicates included)
	Files   []string // rewritten files, in first-touch order
	Classes []string // distinct touched class names, in first-touch order
}

// Processor drives the whole pipeline: parse the log into failed-test
// records, locate each expected block in the lazily cached sources, batch the
// replacements per file, and rewrite the files through the FileSystem
// capability. A Processor holds the only state that outlives a single test
// record; everything is discarded when a new test run is detected in the log.
type Processor struct {
	fs  FileSystem
	log Logger

	cache     map[string]string
	pending   map[string][]Replacement
	order     []string
	seen      map[testKey]struct{}
	classes   []string
	classSeen map[string]struct{}
	summary   Summary
}

// NewProcessor returns a processor using fs for all file access. A nil
// logger discards all output.
func NewProcessor(fs FileSystem, logger Logger) *Processor {
	if logger == nil {
		logger = NopLogger{}
	}
	p := &Processor{fs: fs, log: logger}
	p.reset()
	return p
}

// reset clears everything accumulated so far. It runs at construction and
// whenever the log announces a fresh test run, so concatenated retry logs
// keep only the last run's results. The file cache survives: the sources on
// disk have not changed between retries within one log.
func (p *Processor) reset() {
	if p.cache == nil {
		p.cache = make(map[string]string)
	}
	p.pending = make(map[string][]Replacement)
	p.order = nil
	p.seen = make(map[testKey]struct{})
	p.classes = nil
	p.classSeen = make(map[string]struct{})
	p.summary = Summary{}
}

// Run consumes a full test log and rewrites every source file it can. It
// returns a fatal error only when the log itself is structurally unreadable
// or a rewritten file cannot be persisted; per-result problems are logged as
// warnings and skipped.
func (p *Processor) Run(ctx context.Context, input io.Reader) (Summary, error) {
	parser := NewParser(input)
	parser.OnRunStart = func() {
		p.log.Debug(ctx, "new test run detected, discarding earlier results")
		p.reset()
	}
	for {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		res, err := parser.Next()
		if err != nil {
			return Summary{}, err
		}
		if res == nil {
			break
		}
		p.collect(ctx, res)
	}
	if err := p.flush(ctx); err != nil {
		return Summary{}, err
	}
	p.summary.Classes = append([]string(nil), p.classes...)
	return p.summary, nil
}

// collect turns one failed-test record into a pending replacement, or warns
// and skips it.
func (p *Processor) collect(ctx context.Context, res *ParsingResult) {
	loc := res.Location
	key := testKey{loc.Namespace, loc.ClassName, loc.MethodName}
	test := loc.ClassName + "." + loc.MethodName
	if _, dup := p.seen[key]; dup {
		p.summary.Skipped++
		p.log.Warn(ctx, "test reported as failed more than once, keeping the first report",
			Field("test", test))
		return
	}
	p.seen[key] = struct{}{}

	content, err := p.content(loc.FilePath)
	if err != nil {
		p.summary.Skipped++
		p.log.Warn(ctx, "cannot read source file",
			Field("test", test), Field("file", loc.FilePath), Field("error", err))
		return
	}
	rep, err := Locate(content, res)
	if err != nil {
		p.summary.Skipped++
		p.log.Warn(ctx, "cannot locate expected block",
			Field("test", test), Field("file", loc.FilePath), Field("line", loc.Line), Field("error", err))
		return
	}

	if _, queued := p.pending[loc.FilePath]; !queued {
		p.order = append(p.order, loc.FilePath)
	}
	p.pending[loc.FilePath] = append(p.pending[loc.FilePath], rep)
	if _, touched := p.classSeen[loc.ClassName]; !touched {
		p.classSeen[loc.ClassName] = struct{}{}
		p.classes = append(p.classes, loc.ClassName)
	}
	p.summary.Updated++
	p.log.Info(ctx, "queued update",
		Field("test", test), Field("file", loc.FilePath), Field("line", loc.Line))
}

// content returns the file's text, reading it at most once per run so every
// replacement for one file is computed against the same original coordinates.
func (p *Processor) content(path string) (string, error) {
	if cached, ok := p.cache[path]; ok {
		return cached, nil
	}
	content, err := p.fs.ReadText(path)
	if err != nil {
		return "", err
	}
	p.cache[path] = content
	return content, nil
}

// flush applies the batched replacements file by file and persists the
// results.
func (p *Processor) flush(ctx context.Context) error {
	for _, path := range p.order {
		replacements := p.pending[path]
		updated := ApplyReplacements(p.cache[path], replacements)
		if err := p.fs.WriteText(path, updated); err != nil {
			return err
		}
		p.summary.Files = append(p.summary.Files, path)
		p.log.Info(ctx, "rewrote file",
			Field("file", path), Field("replacements", len(replacements)))
	}
	return nil
}
