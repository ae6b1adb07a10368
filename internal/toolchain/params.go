// Package toolchain derives the InstallShield invocation parameters from the
// configuration and the program directory.
//
// Every path is plain string concatenation under the toolchain's fixed
// directory layout; nothing is cleaned or re-checked on disk here.
package toolchain

import (
	"os"
	"strings"

	"github.com/ysouyno/isbld/internal/config"
)

// Fixed toolchain layout and compiler inputs.
const (
	ScriptFilesDir = "Script Files"
	RuleFile       = "Setup.rul"
	Switches       = "-w50 -e50 -v3 -g"
)

// Libraries are the object libraries every InstallScript project links against.
var Libraries = []string{"isrt.obl", "ifx.obl"}

// Params holds everything needed to render the toolchain command lines.
type Params struct {
	Compiler    string   `yaml:"compiler"`
	RuleFile    string   `yaml:"rule_file"`
	Libraries   []string `yaml:"libraries"`
	LibPaths    []string `yaml:"lib_paths"`
	IncludeIfx  string   `yaml:"include_ifx"`
	IncludeIsrt string   `yaml:"include_isrt"`
	// IncludeScript is the project's own script directory.
	IncludeScript string `yaml:"include_script"`
	// Definitions are extra preprocessor definitions, empty by default.
	Definitions string `yaml:"definitions"`
	Switches    string `yaml:"switches"`

	Builder   string `yaml:"builder"`
	Project   string `yaml:"project"`
	DiskImage string `yaml:"disk_image"`

	Archiver string `yaml:"archiver"`
	Artifact string `yaml:"artifact"`
	// ArchiveSource is the wildcard over the disk image handed to the archiver.
	ArchiveSource string `yaml:"archive_source"`
}

// Resolver derives Params relative to a fixed program directory.
type Resolver struct {
	ProgramDir string
	// Separator joins path elements; defaults to the host separator.
	Separator string
}

// NewResolver returns a Resolver rooted at programDir.
func NewResolver(programDir string) *Resolver {
	return &Resolver{ProgramDir: programDir, Separator: string(os.PathSeparator)}
}

// Resolve derives the invocation parameters from cfg.
func (r *Resolver) Resolve(cfg *config.Config) Params {
	home := cfg.ToolchainHome
	return Params{
		Compiler:  r.join(home, "System", "Compile.exe"),
		RuleFile:  r.join(r.ProgramDir, ScriptFilesDir, RuleFile),
		Libraries: append([]string(nil), Libraries...),
		LibPaths: []string{
			r.join(home, "Script", "Ifx", "Lib"),
			r.join(home, "Script", "Isrt", "Lib"),
		},
		IncludeIfx:    r.join(home, "Script", "Ifx", "Include"),
		IncludeIsrt:   r.join(home, "Script", "Isrt", "Include"),
		IncludeScript: r.join(r.ProgramDir, ScriptFilesDir),
		Definitions:   "",
		Switches:      Switches,
		Builder:       r.join(home, "System", "ISCmdBld.exe"),
		Project:       r.join(r.ProgramDir, cfg.ProjectName),
		DiskImage:     r.join(r.ProgramDir, "Media", cfg.Media(), "Disk Image", "Disk1"),
		Archiver:      cfg.ArchiverPath,
		Artifact:      r.join(r.ProgramDir, cfg.OutputName),
		ArchiveSource: r.join(r.ProgramDir, "Media", cfg.Media(), "Disk Image", "Disk1", "*"),
	}
}

// Resolve is shorthand for NewResolver(programDir).Resolve(cfg).
func Resolve(cfg *config.Config, programDir string) Params {
	return NewResolver(programDir).Resolve(cfg)
}

func (r *Resolver) join(elems ...string) string {
	sep := r.Separator
	if sep == "" {
		sep = string(os.PathSeparator)
	}
	return strings.Join(elems, sep)
}
