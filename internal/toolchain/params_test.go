package toolchain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ysouyno/isbld/internal/config"
)

func TestResolve_Slash(t *testing.T) {
	cfg := &config.Config{ToolchainHome: "/opt/IS", ProjectName: "demo.ism", ArchiverPath: "/usr/bin/rar", OutputName: "demo.exe"}
	r := &Resolver{ProgramDir: "/work/setup", Separator: "/"}

	p := r.Resolve(cfg)

	assert.Equal(t, "/opt/IS/System/Compile.exe", p.Compiler)
	assert.Equal(t, "/opt/IS/System/ISCmdBld.exe", p.Builder)
	assert.True(t, strings.HasPrefix(p.Compiler, "/opt/IS"))
	assert.Equal(t, "/work/setup/Script Files/Setup.rul", p.RuleFile)
	assert.Equal(t, []string{"isrt.obl", "ifx.obl"}, p.Libraries)
	assert.Equal(t, []string{"/opt/IS/Script/Ifx/Lib", "/opt/IS/Script/Isrt/Lib"}, p.LibPaths)
	assert.Equal(t, "/opt/IS/Script/Ifx/Include", p.IncludeIfx)
	assert.Equal(t, "/opt/IS/Script/Isrt/Include", p.IncludeIsrt)
	assert.Equal(t, "/work/setup/Script Files", p.IncludeScript)
	assert.Empty(t, p.Definitions)
	assert.Equal(t, "-w50 -e50 -v3 -g", p.Switches)
	assert.Equal(t, "/work/setup/demo.ism", p.Project)
	assert.Equal(t, "/work/setup/Media/EIOSetup_SCH/Disk Image/Disk1", p.DiskImage)
	assert.Equal(t, "/usr/bin/rar", p.Archiver)
	assert.Equal(t, "/work/setup/demo.exe", p.Artifact)
	assert.Equal(t, "/work/setup/Media/EIOSetup_SCH/Disk Image/Disk1/*", p.ArchiveSource)
}

func TestResolve_WindowsLayoutIsNotNormalized(t *testing.T) {
	cfg := config.Default()
	cfg.MediaName = "Retail"
	r := &Resolver{ProgramDir: `D:\proj\`, Separator: `\`}

	p := r.Resolve(&cfg)

	assert.Equal(t, `C:\Program Files (x86)\InstallShield\2018\System\Compile.exe`, p.Compiler)
	// A trailing separator is kept verbatim, no cleaning happens.
	assert.Equal(t, `D:\proj\\Your Project Name.ism`, p.Project)
	assert.Equal(t, `D:\proj\\Media\Retail\Disk Image\Disk1`, p.DiskImage)
}

func TestResolve_LibrariesAreCopied(t *testing.T) {
	p := Resolve(&config.Config{}, "dir")
	p.Libraries[0] = "mutated.obl"
	assert.Equal(t, "isrt.obl", Libraries[0])
}
