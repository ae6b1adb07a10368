// Package helpers provides fixtures shared by tests across packages.
package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Installation is a program directory laid out the way an operator deploys isbld:
// the executable's config next to it, the project file, Script Files and
// placeholder toolchain and archiver paths that exist on disk.
type Installation struct {
	ProgramDir  string
	ConfigPath  string
	Toolchain   string
	Archiver    string
	ProjectName string
}

// ScriptDir returns the project's Script Files directory.
func (i Installation) ScriptDir() string {
	return filepath.Join(i.ProgramDir, "Script Files")
}

// NewInstallation creates an Installation under a fresh temporary directory
// with a configuration that passes validation.
func NewInstallation(t *testing.T) Installation {
	t.Helper()

	dir := t.TempDir()
	inst := Installation{
		ProgramDir:  dir,
		ConfigPath:  filepath.Join(dir, "isbld.yaml"),
		Toolchain:   filepath.Join(dir, "InstallShield"),
		Archiver:    filepath.Join(dir, "WinRAR", "WinRAR.exe"),
		ProjectName: "Setup.ism",
	}

	mkdir(t, filepath.Join(inst.Toolchain, "System"))
	mkdir(t, inst.ScriptDir())
	mkdir(t, filepath.Dir(inst.Archiver))
	write(t, inst.Archiver, "")
	write(t, filepath.Join(inst.ScriptDir(), "Setup.rul"), "function OnBegin() begin end;\n")
	write(t, filepath.Join(dir, inst.ProjectName), "<msi/>\n")
	inst.WriteConfig(t, "")
	return inst
}

// WriteConfig rewrites the configuration document; extra is appended verbatim.
func (i Installation) WriteConfig(t *testing.T, extra string) {
	t.Helper()
	doc := fmt.Sprintf("toolchain_home: %q\nproject_name: %q\narchiver_path: %q\noutput_name: out.exe\n%s",
		i.Toolchain, i.ProjectName, i.Archiver, extra)
	write(t, i.ConfigPath, doc)
}

func mkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
