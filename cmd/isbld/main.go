package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ysouyno/isbld/cmd/isbld/commands"
	"github.com/ysouyno/isbld/internal/foundation/errors"
	"github.com/ysouyno/isbld/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("isbld"),
		kong.Description("Compile the InstallScript and build the InstallShield project next to this program."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	paths, err := cli.ResolvePaths()
	if err != nil {
		adapter.HandleError(errors.WrapError(err, errors.CategoryInternal, "cannot determine program location").Build())
		return
	}

	err = parser.Run(&commands.Global{Logger: slog.Default(), Paths: paths}, cli)
	adapter.HandleError(err)
}
