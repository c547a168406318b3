package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jjonescz/roslyn-test-updater/internal/logging"
	"github.com/jjonescz/roslyn-test-updater/pkg/rewrite"
)

type options struct {
	inputPath  string
	noPlaylist bool
	logLevel   string
}

var summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))

// NewRootCommand builds the updater's command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "roslyn-test-updater",
		Short: "Rewrite failing test baselines from a test run log",
		Long: `Reads the console log of a test run, finds every failed assertion that
prints expected and actual diagnostic lists, and rewrites the corresponding
source files so each expected block matches the value observed at runtime.

The log is read from stdin unless --input names a file. A playlist of the
touched test classes is written to the working directory so the failed tests
can be re-run in one go.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "read the test log from a file instead of stdin")
	cmd.Flags().BoolVar(&opts.noPlaylist, "no-playlist", false, "do not write the playlist of touched test classes")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
	return cmd
}

// Execute runs the root command and returns a POSIX-style exit code.
func Execute() int {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	levelName := opts.logLevel
	if levelName == "" {
		levelName = os.Getenv("TESTUPDATER_LOG")
	}
	logger := logging.NewStdLogger(logging.ParseLevel(levelName), stderr)

	noPlaylist := opts.noPlaylist
	if !noPlaylist && os.Getenv("TESTUPDATER_NO_PLAYLIST") != "" {
		noPlaylist = true
	}

	input := stdin
	if opts.inputPath != "" {
		file, err := os.Open(opts.inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input log: %w", err)
		}
		defer file.Close()
		input = file
	}

	fsys := rewrite.OSFileSystem{}
	processor := rewrite.NewProcessor(fsys, logger)
	summary, err := processor.Run(ctx, input)
	if err != nil {
		return err
	}

	if !noPlaylist && len(summary.Classes) > 0 {
		if err := writePlaylist(ctx, fsys, logger, summary.Classes); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, summaryStyle.Render(formatSummary(summary)))
	return nil
}

func writePlaylist(ctx context.Context, fsys rewrite.FileSystem, logger *logging.StdLogger, classes []string) error {
	out, err := fsys.Create(rewrite.PlaylistFileName)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	if err := rewrite.WritePlaylist(out, classes); err != nil {
		out.Close()
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if path, err := fsys.Abs(rewrite.PlaylistFileName); err == nil {
		logger.Info(ctx, "wrote playlist", rewrite.Field("path", path), rewrite.Field("classes", len(classes)))
	}
	return nil
}

func formatSummary(s rewrite.Summary) string {
	return fmt.Sprintf("Applied %d update(s) across %d file(s), skipped %d result(s).",
		s.Updated, len(s.Files), s.Skipped)
}
