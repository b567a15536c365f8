package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/clipvault/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cliHandler.Close()

	if err := cliHandler.Execute(context.Background(), &args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// argument errors get the usage line as well
		if args.HasCommand() && args.Validate() != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		cliHandler.Close()
		os.Exit(1)
	}
}
