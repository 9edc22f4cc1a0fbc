package gradebook

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Students"

// ParseXLSX reads the first sheet of a workbook (header row first) into records.
func ParseXLSX(r io.Reader) ([]ImportRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Err: err}
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &ImportError{Err: errors.New("workbook does not contain any sheets")}
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &ImportError{Err: errors.Wrapf(err, "getting rows from sheet %q", sheetName)}
	}
	return RecordsFromRows(rows), nil
}

// WriteXLSX writes rows as a single-sheet workbook with the Columns header.
func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return errors.Wrap(err, "creating stream writer")
	}
	if err = sw.SetRow("A1", toCells(Columns)); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		if err = sw.SetRow(cellRef, toCells(row.Record())); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	if err = sw.Flush(); err != nil {
		return errors.Wrap(err, "flushing stream writer")
	}

	_, err = f.WriteTo(w)
	return errors.Wrap(err, "writing workbook")
}

func toCells(record []string) []interface{} {
	cells := make([]interface{}, len(record))
	for i, v := range record {
		cells[i] = v
	}
	return cells
}
