package commands

import (
	"fmt"

	"github.com/ysouyno/isbld/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	return RunInit(g.Paths.Config, i.Force)
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("Edit toolchain_home, project_name, archiver_path and output_name, then run isbld build")
	return nil
}
