package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/sodiem/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp      = errors.New("help provided")
	errRowErrors = errors.New("import has row errors")
)

type commandLine struct {
	conf     *core.Config
	out      io.Writer
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password, for ADMIN_PASS_HASH")
	fmt.Fprintln(cli.out, "  checkcsv -file FILE - dry-run an import file (.csv or .xlsx) and print the summary")
	fmt.Fprintln(cli.out, "  template - print the import CSV template")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkCSVCmd := flag.NewFlagSet("checkcsv", flag.ContinueOnError)
	checkCSVCmd.SetOutput(cli.out)
	checkCSVFile := checkCSVCmd.String("file", "", "The import file to check. Nothing is saved.")

	switch args[1] {
	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(pwd)
	case "checkcsv":
		if err := checkCSVCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *checkCSVFile == "" {
			checkCSVCmd.Usage()
			return errHelp
		}
		return cli.checkCSV(*checkCSVFile)
	case "template":
		return cli.template()
	default:
		cli.printUsage()
		return errHelp
	}
}
