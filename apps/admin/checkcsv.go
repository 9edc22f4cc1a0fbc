package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core/gradebook"
	"github.com/trezcool/sodiem/storage/database/dummy"
)

// checkCSV imports the file into a throwaway in-memory store and prints the summary.
func (cli *commandLine) checkCSV(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	var records []gradebook.ImportRecord
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = gradebook.ParseXLSX(file)
	} else {
		records, err = gradebook.ParseCSV(file)
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %q", path)
	}

	db, err := dummydb.Open()
	if err != nil {
		return err
	}
	svc := gradebook.NewService(dummydb.NewClassRepository(db), gradebook.DefaultCatalog(), cli.validate, cli.conf)
	summary := svc.Import(records)

	fmt.Fprintf(cli.out, "rows: %d\n", summary.Rows)
	fmt.Fprintf(cli.out, "students: %d\n", summary.CreatedStudents+summary.UpdatedStudents)
	fmt.Fprintf(cli.out, "grades: %d\n", summary.CreatedGrades+summary.UpdatedGrades)
	fmt.Fprintf(cli.out, "errors: %d\n", len(summary.Errors))
	for _, e := range summary.Errors {
		fmt.Fprintln(cli.out, "  "+e)
	}
	if len(summary.Errors) > 0 {
		return errRowErrors
	}
	return nil
}

func (cli *commandLine) template() error {
	return gradebook.WriteTemplate(cli.out)
}
