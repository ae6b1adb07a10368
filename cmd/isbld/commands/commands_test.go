package commands

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ysouyno/isbld/internal/command"
	"github.com/ysouyno/isbld/internal/config"
	"github.com/ysouyno/isbld/internal/history"
	"github.com/ysouyno/isbld/internal/process"
	helpers "github.com/ysouyno/isbld/internal/testutil/testutils"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("isbld"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func TestCLI_BuildIsDefaultCommand(t *testing.T) {
	cli, ctx := parse(t)
	assert.Equal(t, "build", ctx.Command())
	assert.False(t, cli.Build.Archive)

	cli, ctx = parse(t, "--archive", "--no-history")
	assert.Equal(t, "build", ctx.Command())
	assert.True(t, cli.Build.Archive)
	assert.True(t, cli.Build.NoHistory)
}

func TestCLI_WatchFlags(t *testing.T) {
	cli, ctx := parse(t, "watch", "--debounce", "500ms", "--archive")
	assert.Equal(t, "watch", ctx.Command())
	assert.Equal(t, 500*time.Millisecond, cli.Watch.Debounce)
	assert.True(t, cli.Watch.Archive)
}

func TestResolvePaths(t *testing.T) {
	exe := filepath.Join("opt", "setup", "isbld.exe")

	p := resolvePaths(exe, "", "")
	assert.Equal(t, filepath.Join("opt", "setup"), p.ProgramDir)
	assert.Equal(t, filepath.Join("opt", "setup", "isbld.yaml"), p.Config)
	assert.Equal(t, filepath.Join("opt", "setup", "isbld.db"), p.History)

	p = resolvePaths(exe, "other.yaml", "proj")
	assert.Equal(t, "proj", p.ProgramDir)
	assert.Equal(t, "other.yaml", p.Config)
}

func testPaths(t *testing.T) Paths {
	dir := t.TempDir()
	return resolvePaths(filepath.Join(dir, "isbld.exe"), "", "")
}

func TestRunParams_PrintsCommandLines(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, config.Init(paths.Config, false))

	var out bytes.Buffer
	require.NoError(t, RunParams(&out, paths, true))

	var report struct {
		Config   string            `yaml:"config"`
		Commands map[string]string `yaml:"commands"`
		Params   struct {
			Project string `yaml:"project"`
		} `yaml:"params"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, paths.Config, report.Config)
	assert.Contains(t, report.Params.Project, "Your Project Name.ism")
	assert.Len(t, report.Commands, 3)
	assert.Contains(t, report.Commands[command.StepBuild], "ISCmdBld.exe")
}

func TestRunParams_MissingConfigIsCreated(t *testing.T) {
	paths := testPaths(t)
	err := RunParams(&bytes.Buffer{}, paths, false)
	require.ErrorIs(t, err, config.ErrConfigCreated)
	assert.FileExists(t, paths.Config)
}

func TestSession_BuildWritesMetricsAndSkipsHistoryOnCreate(t *testing.T) {
	paths := testPaths(t)
	metricsFile := filepath.Join(t.TempDir(), "isbld.prom")

	var out bytes.Buffer
	s, err := newSession(paths, &BuildCmd{MetricsFile: metricsFile}, &out)
	require.NoError(t, err)
	defer s.Close()

	err = s.Build(context.Background())
	require.ErrorIs(t, err, config.ErrConfigCreated)
	assert.Empty(t, out.String(), "no summary when no step ran")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `isbld_run_outcomes_total{result="failed"} 1`)

	runs, err := s.store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSession_NoHistory(t *testing.T) {
	paths := testPaths(t)
	s, err := newSession(paths, &BuildCmd{NoHistory: true}, &bytes.Buffer{})
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.store)
	assert.NoFileExists(t, paths.History)
}

func TestRunHistory(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var out bytes.Buffer
	require.NoError(t, RunHistory(context.Background(), &out, store, 5, false))
	assert.Equal(t, "No runs recorded\n", out.String())

	started := time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(context.Background(), history.Run{
		ID:       history.NewRunID(),
		Project:  "Setup.ism",
		Revision: "0123456789abcdef",
		Started:  started,
		Finished: started.Add(90 * time.Second),
		Status:   history.StatusSucceeded,
		Steps: []history.Step{
			{Name: command.StepCompile, Lines: 12, Duration: time.Second},
		},
	}))

	out.Reset()
	require.NoError(t, RunHistory(context.Background(), &out, store, 5, true))
	text := out.String()
	assert.Contains(t, text, "Setup.ism")
	assert.Contains(t, text, "01234567")
	assert.NotContains(t, text, "0123456789")
	assert.Contains(t, text, "1m30s")
	assert.Contains(t, text, "12 lines")
}

func TestSession_BuildWithoutShellRecordsFailedRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("cmd.exe is always present on Windows")
	}
	if _, err := exec.LookPath("cmd"); err == nil {
		t.Skip("a cmd executable is on PATH")
	}
	inst := helpers.NewInstallation(t)
	paths := resolvePaths(filepath.Join(inst.ProgramDir, "isbld.exe"), "", "")
	require.Equal(t, inst.ConfigPath, paths.Config)

	var out bytes.Buffer
	s, err := newSession(paths, &BuildCmd{}, &out)
	require.NoError(t, err)
	defer s.Close()

	err = s.Build(context.Background())
	require.ErrorIs(t, err, process.ErrProcessSpawn)
	assert.Contains(t, out.String(), "Build failed")

	runs, err := s.store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, history.StatusFailed, runs[0].Status)
	require.Len(t, runs[0].Steps, 1)
	assert.Equal(t, command.StepCompile, runs[0].Steps[0].Name)
	assert.NotEmpty(t, runs[0].Steps[0].Error)
}

func TestNewLogger_WarnsOnUnknownSettings(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, "chatty", "")

	logger.Debug("hidden")
	logger.Info("shown")
	text := buf.String()
	assert.Contains(t, text, "Ignoring logging setting")
	assert.Contains(t, text, config.EnvLogLevel)
	assert.Contains(t, text, "shown")
	assert.NotContains(t, text, "hidden", "unknown level falls back to info")
}

func TestNewLogger_JSONAndVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true, "error", "JSON")

	logger.Debug("detail")
	assert.Contains(t, buf.String(), `"msg":"detail"`)
	assert.NotContains(t, buf.String(), "Ignoring logging setting")
}
