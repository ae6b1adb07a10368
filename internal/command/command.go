// Package command renders toolchain steps into shell command lines.
//
// Commands are built as an executable plus structured arguments and are only
// flattened to a string by Render, at the boundary where the shell needs one.
// Every path may contain spaces ("Program Files", "Script Files"), so Render
// quotes each path and then wraps the whole line in one more pair of quotes:
// cmd.exe strips that outer pair and the tool still receives intact paths.
package command

import (
	"strings"

	"github.com/ysouyno/isbld/internal/toolchain"
)

// Arg is a single command argument.
type Arg struct {
	// Flag is prepended verbatim, e.g. "-I" or "-LibPath".
	Flag string
	// Value is the argument text.
	Value string
	// Quote wraps Value in double quotes.
	Quote bool
}

// Lit is a literal argument passed as-is.
func Lit(v string) Arg { return Arg{Value: v} }

// Path is a quoted argument.
func Path(v string) Arg { return Arg{Value: v, Quote: true} }

// FlagPath is a flag with a quoted value attached: -I"dir".
func FlagPath(flag, v string) Arg { return Arg{Flag: flag, Value: v, Quote: true} }

func (a Arg) render() string {
	if a.Quote {
		return a.Flag + quote(a.Value)
	}
	return a.Flag + a.Value
}

// Command is one toolchain invocation.
type Command struct {
	// Name identifies the step ("compile", "build", "archive").
	Name string
	Exe  string
	Args []Arg
}

// Line renders the command; see Render.
func (c Command) Line() string { return Render(c) }

// Render flattens c into a single double-quoted command line. Literal
// arguments with an empty value produce no token.
func Render(c Command) string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Exe))
	for _, a := range c.Args {
		if !a.Quote && a.Flag == "" && a.Value == "" {
			continue
		}
		parts = append(parts, a.render())
	}
	return quote(strings.Join(parts, " "))
}

func quote(s string) string {
	return `"` + s + `"`
}

// Step names.
const (
	StepCompile = "compile"
	StepBuild   = "build"
	StepArchive = "archive"
)

// Compile invokes the script compiler on the rule file.
func Compile(p toolchain.Params) Command {
	args := []Arg{Path(p.RuleFile)}
	for _, lib := range p.Libraries {
		args = append(args, Path(lib))
	}
	for _, dir := range p.LibPaths {
		args = append(args, FlagPath("-LibPath", dir))
	}
	args = append(args,
		FlagPath("-I", p.IncludeIfx),
		FlagPath("-I", p.IncludeIsrt),
		FlagPath("-I", p.IncludeScript),
	)
	for _, def := range strings.Fields(p.Definitions) {
		args = append(args, Lit(def))
	}
	for _, sw := range strings.Fields(p.Switches) {
		args = append(args, Lit(sw))
	}
	return Command{Name: StepCompile, Exe: p.Compiler, Args: args}
}

// Build invokes the project builder on the .ism project.
func Build(p toolchain.Params) Command {
	return Command{
		Name: StepBuild,
		Exe:  p.Builder,
		Args: []Arg{Lit("-p"), Path(p.Project)},
	}
}

// Archive packs the disk image into a self-extracting artifact with WinRAR.
func Archive(p toolchain.Params) Command {
	return Command{
		Name: StepArchive,
		Exe:  p.Archiver,
		Args: []Arg{
			Lit("a"), Lit("-sfx"), Lit("-ep1"), Lit("-r"), Lit("-y"),
			Path(p.Artifact),
			Path(p.ArchiveSource),
		},
	}
}
