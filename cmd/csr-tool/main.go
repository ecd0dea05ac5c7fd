package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/csrkit/cmd/csr-tool/cli"
	"github.com/effective-security/csrkit/internal/version"
	"github.com/effective-security/x/ctl"
)

type app struct {
	cli.Cli

	Gen     cli.GenCmd     `cmd:"" help:"generate a key and CSR"`
	Info    cli.InfoCmd    `cmd:"" help:"print Common Name and Subject Alt Names of CSR"`
	Verify  cli.VerifyCmd  `cmd:"" help:"verify CSR signature"`
	KeyInfo cli.KeyInfoCmd `cmd:"" name:"key-info" help:"print private key info"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("csr-tool"),
		kong.Description("CLI tool to create and inspect certificate requests"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG mode print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		cl.Cli.PrintMetrics()
		ctx.FatalIfErrorf(err)
	}
}
