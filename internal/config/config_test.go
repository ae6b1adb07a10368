package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadOrCreate_MissingWritesDefaultAndSignalsCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbld.yaml")

	cfg, err := LoadOrCreate(path)
	require.Nil(t, cfg, "a freshly created document must not be returned as usable config")
	require.ErrorIs(t, err, ErrConfigCreated)
	assert.Contains(t, err.Error(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]string{
		"toolchain_home": `C:\Program Files (x86)\InstallShield\2018`,
		"project_name":   "Your Project Name.ism",
		"archiver_path":  `C:\Program Files (x86)\WinRAR\WinRAR.exe`,
		"output_name":    "out.exe",
	}, doc)
}

func TestLoadOrCreate_SecondRunParsesCreatedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbld.yaml")

	_, err := LoadOrCreate(path)
	require.ErrorIs(t, err, ErrConfigCreated)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadOrCreate_Malformed(t *testing.T) {
	tests := map[string]string{
		"syntax":        "toolchain_home: [unclosed\n",
		"unknown field": "toolchain_home: /opt/IS\nwinrar: /usr/bin/rar\n",
		"empty":         "",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "isbld.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			cfg, err := LoadOrCreate(path)
			require.Nil(t, cfg)
			require.ErrorIs(t, err, ErrConfigMalformed)
			assert.False(t, errors.Is(err, ErrConfigCreated))
		})
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("ISBLD_TEST_HOME", "/opt/IS")
	path := filepath.Join(t.TempDir(), "isbld.yaml")
	body := "toolchain_home: ${ISBLD_TEST_HOME}\nproject_name: demo.ism\narchiver_path: /usr/bin/rar\noutput_name: demo.exe\noutput_encoding: gbk\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/IS", cfg.ToolchainHome)
	assert.Equal(t, "gbk", cfg.OutputEncoding)
	assert.Equal(t, DefaultMediaName, cfg.Media())
}

func TestLoad_KeepsBareDollar(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	t.Setenv("ISBLD_PF(x86)", `C:\Program Files (x86)`)
	path := filepath.Join(t.TempDir(), "isbld.yaml")
	body := "toolchain_home: '${ISBLD_PF(x86)}\\InstallShield'\nproject_name: 'Setup$HOME $1.ism'\narchiver_path: '${ISBLD_UNSET_VAR}rar'\noutput_name: 'out$.exe'\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, `C:\Program Files (x86)\InstallShield`, cfg.ToolchainHome)
	assert.Equal(t, "Setup$HOME $1.ism", cfg.ProjectName)
	assert.Equal(t, "rar", cfg.ArchiverPath, "unset references expand to nothing")
	assert.Equal(t, "out$.exe", cfg.OutputName)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbld.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, os.WriteFile(path, []byte("garbage: true\n"), 0o644))
	require.NoError(t, Init(path, true))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out.exe", cfg.OutputName)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "InstallShield")
	require.NoError(t, os.Mkdir(home, 0o755))
	rar := filepath.Join(dir, "WinRAR.exe")
	require.NoError(t, os.WriteFile(rar, nil, 0o755))
	cfgPath := filepath.Join(dir, "isbld.yaml")

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(&Config{ToolchainHome: home, ArchiverPath: rar}, cfgPath))
	})

	t.Run("missing toolchain", func(t *testing.T) {
		missing := filepath.Join(dir, "nope")
		err := Validate(&Config{ToolchainHome: missing, ArchiverPath: rar}, cfgPath)
		require.ErrorIs(t, err, ErrMissingToolchainPath)
		assert.NotErrorIs(t, err, ErrMissingArchiverPath)
		assert.Contains(t, err.Error(), missing)
		assert.Contains(t, err.Error(), cfgPath)
	})

	t.Run("missing archiver", func(t *testing.T) {
		missing := filepath.Join(dir, "rar.exe")
		err := Validate(&Config{ToolchainHome: home, ArchiverPath: missing}, cfgPath)
		require.ErrorIs(t, err, ErrMissingArchiverPath)
		assert.Contains(t, err.Error(), missing)
		assert.Contains(t, err.Error(), cfgPath)
	})

	t.Run("toolchain is checked first", func(t *testing.T) {
		err := Validate(&Config{}, cfgPath)
		require.ErrorIs(t, err, ErrMissingToolchainPath)
	})
}

func TestLocate(t *testing.T) {
	exe := filepath.Join("opt", "tools", "isbld.exe")
	assert.Equal(t, filepath.Join("opt", "tools", "isbld.yaml"), Locate(exe))
	assert.Equal(t, filepath.Join("opt", "tools", "isbld.db"), Sibling(exe, ".db"))
	assert.Equal(t, filepath.Join("bin", "isbld.yaml"), Locate(filepath.Join("bin", "isbld")))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnv(dir), "missing .env is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ISBLD_LOG_FORMAT=json\nISBLD_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvLogLevel, "warn")
	require.NoError(t, os.Unsetenv(EnvLogFormat))

	require.NoError(t, LoadEnv(dir))
	assert.Equal(t, "json", os.Getenv(EnvLogFormat))
	assert.Equal(t, "warn", os.Getenv(EnvLogLevel), "existing variables win")
}

func TestParseLogging(t *testing.T) {
	l, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, l)

	l, err = ParseLogLevel("chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogLevel)
	assert.Equal(t, LogLevelInfo, l)

	f, err := ParseLogFormat(" json ")
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, f)

	f, err = ParseLogFormat("")
	require.NoError(t, err)
	assert.Equal(t, LogFormatText, f)

	f, err = ParseLogFormat("xml")
	require.Error(t, err)
	assert.Equal(t, LogFormatText, f)
}
