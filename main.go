package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/greminder/greminder/internal/cli"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	// Interactive search when no subcommand is given
	if parser.Subcommand() == nil {
		args.Browse = &cli.BrowseCmd{}
	}

	if err := args.Validate(); err != nil {
		parser.Fail(err.Error())
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(&args)
	if closeErr := cliHandler.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
