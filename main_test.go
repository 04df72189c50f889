package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReport = `<checkstyle version="10.0">
  <file name="src/A.java">
    <error line="5" column="2" severity="warning" message="bad name" source="x.y.Naming"/>
    <error line="9" severity="error" message="too long" source="com.puppycrawl.tools.checkstyle.checks.sizes.LineLengthCheck"/>
  </file>
  <file name="src/package.html">
    <error line="1" severity="error" message="skipped" source="a.b.C"/>
  </file>
</checkstyle>`

func init() {
	color.NoColor = true
}

func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	out, a, err := executeApp(t, fs, args...)
	require.NoError(t, a.Close())
	return out, err
}

// executeApp runs the root command and leaves closing the app to the caller.
func executeApp(t *testing.T, fs afero.Fs, args ...string) (string, *app, error) {
	t.Helper()
	for _, key := range []string{"CHECKSTYLE_REPORT", "CHECKSTYLE_LOG_FILE", "CHECKSTYLE_LOG_LEVEL", "CHECKSTYLE_LOG_FORMAT", "CHECKSTYLE_MIN_SEVERITY", "CHECKSTYLE_MAX_BYTES"} {
		t.Setenv(key, "")
	}

	var out, errOut bytes.Buffer
	cmd, a := newRootCommand(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), a, err
}

func reportFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "build/reports/checkstyle/main.xml", []byte(testReport), 0o644))
	return fs
}

func TestParseCommandText(t *testing.T) {
	out, err := execute(t, reportFs(t), "parse")
	require.NoError(t, err)

	assert.Contains(t, out, "src/A.java:5:2: [normal] bad name (Y/Naming)")
	assert.Contains(t, out, "src/A.java:9:0: [high] too long (Sizes/LineLengthCheck)")
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "2 issues (high: 1, normal: 1, low: 0, none: 0)")
}

func TestParseCommandJSON(t *testing.T) {
	out, err := execute(t, reportFs(t), "parse", "--format", "json", "build/reports/checkstyle/main.xml")
	require.NoError(t, err)

	var issues []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &issues))
	require.Len(t, issues, 2)
	assert.Equal(t, "src/A.java", issues[0]["fileName"])
	assert.Equal(t, "normal", issues[0]["severity"])
	assert.Equal(t, "Naming", issues[0]["type"])
	assert.Equal(t, "Y", issues[0]["category"])
}

func TestParseCommandFailOn(t *testing.T) {
	_, err := execute(t, reportFs(t), "parse", "--fail-on", "high")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)

	_, err = execute(t, reportFs(t), "parse", "--fail-on", "bogus")
	require.Error(t, err)
	assert.False(t, errors.As(err, &exitErr))
}

func TestParseCommandNotCheckstyle(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pmd.xml", []byte(`<pmd/>`), 0o644))

	_, err := execute(t, fs, "parse", "pmd.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Checkstyle file")
}

func TestParseCommandConfig(t *testing.T) {
	fs := reportFs(t)
	require.NoError(t, afero.WriteFile(fs, "cs.yml", []byte("report:\n  path: build/reports/checkstyle/main.xml\nlogging:\n  format: json\n"), 0o644))

	_, err := execute(t, fs, "--config", "cs.yml", "parse")
	require.NoError(t, err)

	_, err = execute(t, fs, "--config", "missing.yml", "parse")
	require.Error(t, err)
}

func TestReviewCommandRequiresToken(t *testing.T) {
	t.Setenv("CHECKSTYLE_GITHUB_API_TOKEN", "")

	_, err := execute(t, reportFs(t), "review")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKSTYLE_GITHUB_API_TOKEN")
}

func TestLogFileClosedAfterFailedCommand(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	fs := reportFs(t)
	require.NoError(t, afero.WriteFile(fs, "cs.yml",
		[]byte("logging:\n  file: "+logPath+"\n  level: debug\n  format: json\n"), 0o644))

	_, a, err := executeApp(t, fs, "--config", "cs.yml", "parse", "--fail-on", "high")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.NotNil(t, a.closer, "the log file stays open until the app is closed")

	require.NoError(t, a.Close())
	assert.Nil(t, a.closer)
	require.NoError(t, a.Close(), "closing twice is a no-op")

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "package.html")
}
