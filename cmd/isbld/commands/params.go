package commands

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ysouyno/isbld/internal/build"
	"github.com/ysouyno/isbld/internal/config"
	"github.com/ysouyno/isbld/internal/toolchain"
)

// ParamsCmd implements the 'params' command.
type ParamsCmd struct {
	Archive bool `help:"Include the archive step in the printed command lines"`
}

func (p *ParamsCmd) Run(g *Global, _ *CLI) error {
	return RunParams(os.Stdout, g.Paths, p.Archive)
}

type paramsReport struct {
	Config   string            `yaml:"config"`
	Params   toolchain.Params  `yaml:"params"`
	Commands map[string]string `yaml:"commands"`
}

// RunParams prints the resolved parameters without running anything. The
// configuration must exist but the toolchain paths are not checked.
func RunParams(w io.Writer, paths Paths, archive bool) error {
	cfg, err := config.LoadOrCreate(paths.Config)
	if err != nil {
		return err
	}
	params := toolchain.Resolve(cfg, paths.ProgramDir)

	report := paramsReport{
		Config:   paths.Config,
		Params:   params,
		Commands: map[string]string{},
	}
	for _, c := range build.NewPipeline(nil).WithArchive(archive).Steps(params) {
		report.Commands[c.Name] = c.Line()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	return enc.Close()
}
