package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jjonescz/roslyn-test-updater/pkg/rewrite"
)

const cliTestSource = `namespace Example.Tests
{
    public class RefFieldTests
    {
        public void First()
        {
            comp.VerifyDiagnostics(
                Diagnostic(ErrorCode.ERR_Old, "F").WithLocation(6, 21));
        }
    }
}
`

const cliTestLog = `Starting test execution, please wait...
[xUnit.net 00:00:01.00]     Example.Tests.RefFieldTests.First [FAIL]
[xUnit.net 00:00:01.00]       Assert failed. Expected:
[xUnit.net 00:00:01.00]           Diagnostic(ErrorCode.ERR_Old, "F").WithLocation(6, 21)
[xUnit.net 00:00:01.00]       Actual:
[xUnit.net 00:00:01.00]           Diagnostic(ErrorCode.ERR_New, "F").WithLocation(6, 21)
[xUnit.net 00:00:01.00]       Diff:
[xUnit.net 00:00:01.00]       Stack Trace:
[xUnit.net 00:00:01.00]         RefFieldTests.cs(7,0): at Example.Tests.RefFieldTests.First()
[xUnit.net 00:00:01.00]       Actual: False
Results File: /tmp/results.trx
`

// chdir switches to dir for the duration of the test, restoring the
// previous working directory on cleanup. (testing.T.Chdir needs Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

// runCommand executes the root command in a fresh temp working directory
// seeded with the source file.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("RefFieldTests.cs", []byte(cliTestSource), 0o644))

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCommandRewritesFromLogFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("RefFieldTests.cs", []byte(cliTestSource), 0o644))
	require.NoError(t, os.WriteFile("run.log", []byte(cliTestLog), 0o644))

	cmd := NewRootCommand()
	var stdout bytes.Buffer
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--input", "run.log"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile("RefFieldTests.cs")
	require.NoError(t, err)
	// Rewritten sources carry a UTF-8 byte-order mark.
	require.True(t, strings.HasPrefix(string(data), "\ufeff"))
	require.Contains(t, string(data), "ERR_New")
	require.NotContains(t, string(data), "ERR_Old")

	playlist, err := os.ReadFile(rewrite.PlaylistFileName)
	require.NoError(t, err)
	require.Contains(t, string(playlist), `Value="RefFieldTests"`)

	require.Contains(t, stdout.String(), "Applied 1 update(s) across 1 file(s), skipped 0 result(s).")
}

func TestCommandReadsStdinByDefault(t *testing.T) {
	out, err := runCommand(t, cliTestLog)
	require.NoError(t, err)
	require.Contains(t, out, "Applied 1 update(s)")

	data, err := os.ReadFile("RefFieldTests.cs")
	require.NoError(t, err)
	require.Contains(t, string(data), "ERR_New")
}

func TestCommandSuppressesPlaylistWithFlag(t *testing.T) {
	_, err := runCommand(t, cliTestLog, "--no-playlist")
	require.NoError(t, err)

	_, statErr := os.Stat(rewrite.PlaylistFileName)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommandSuppressesPlaylistWithEnv(t *testing.T) {
	t.Setenv("TESTUPDATER_NO_PLAYLIST", "1")
	_, err := runCommand(t, cliTestLog)
	require.NoError(t, err)

	_, statErr := os.Stat(rewrite.PlaylistFileName)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommandSkipsPlaylistWithoutUpdates(t *testing.T) {
	_, err := runCommand(t, "Starting test execution, please wait...\nall green\n")
	require.NoError(t, err)

	_, statErr := os.Stat(rewrite.PlaylistFileName)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommandFailsOnMissingInputFile(t *testing.T) {
	_, err := runCommand(t, "", "--input", "no-such.log")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open input log")
}
