// Package config implements the persisted configuration document that sits
// next to the isbld executable: locating it, creating it on first run,
// loading it and validating the external paths it names.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ysouyno/isbld/internal/foundation/errors"
)

// Config represents the operator-edited configuration document. Values may
// reference environment variables as ${NAME}; a bare $ is taken literally.
type Config struct {
	// ToolchainHome is the InstallShield install directory, e.g.
	// "C:\Program Files (x86)\InstallShield\2018".
	ToolchainHome string `yaml:"toolchain_home"`
	// ProjectName is the file name of the .ism project, relative to the program directory.
	ProjectName string `yaml:"project_name"`
	// ArchiverPath is the absolute path to WinRAR.exe.
	ArchiverPath string `yaml:"archiver_path"`
	// OutputName is the file name of the self-extracting artifact.
	OutputName string `yaml:"output_name"`

	// OutputEncoding names the character set the toolchain writes to stdout.
	// Empty means UTF-8.
	OutputEncoding string `yaml:"output_encoding,omitempty"`
	// MediaName is the media folder under Media/ holding the disk image.
	// Empty means DefaultMediaName.
	MediaName string `yaml:"media_name,omitempty"`
}

// DefaultMediaName is the media folder the builder writes Disk Image/Disk1 into.
const DefaultMediaName = "EIOSetup_SCH"

// Default returns the placeholder document written on first run.
func Default() Config {
	return Config{
		ToolchainHome: `C:\Program Files (x86)\InstallShield\2018`,
		ProjectName:   "Your Project Name.ism",
		ArchiverPath:  `C:\Program Files (x86)\WinRAR\WinRAR.exe`,
		OutputName:    "out.exe",
	}
}

// Media returns the configured media folder name or DefaultMediaName.
func (c *Config) Media() string {
	if c.MediaName == "" {
		return DefaultMediaName
	}
	return c.MediaName
}

// LoadOrCreate parses the document at path. When no document exists a default
// one is written and ErrConfigCreated is returned instead of a configuration,
// so the first run never builds with placeholder data.
func LoadOrCreate(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		slog.Info("Configuration not found, writing default", "path", path)
		if err := write(path, Default()); err != nil {
			return nil, err
		}
		return nil, errors.ConfigError("configuration file created").
			WithKind(errors.KindConfigCreated).
			WithContext("path", path).
			WithHint(fmt.Sprintf("please edit %s and rerun", path)).
			Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return parse(data, path)
}

// Load parses an existing document without the first-run fallback.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Config, error) {
	expanded := expandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if stderrors.Is(err, io.EOF) {
			err = fmt.Errorf("document is empty")
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "configuration file is malformed").
			Fatal().
			WithKind(errors.KindConfigMalformed).
			WithContext("path", path).
			WithHint(fmt.Sprintf("please fix %s and rerun", path)).
			Build()
	}
	return &cfg, nil
}

// envRef matches ${NAME}; NAME may contain parentheses as in ${ProgramFiles(x86)}.
var envRef = regexp.MustCompile(`\$\{([^${}]+)\}`)

// expandEnv substitutes ${NAME} references with the environment value (empty
// when unset). A bare $ is kept, so paths and project names may contain it.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})
}

// Init writes the default document to path. An existing file is kept unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists").
			WithContext("path", path).
			WithHint("use --force to overwrite").
			Build()
	}
	return write(path, Default())
}

func write(path string, cfg Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
