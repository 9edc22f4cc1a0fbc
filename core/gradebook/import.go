package gradebook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ImportError reports an import file that could not be read or parsed. Nothing is committed.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return "reading import file: " + e.Err.Error()
}

type (
	// ImportRecord is one data row of an import file; cells are trimmed, missing columns are empty.
	ImportRecord struct {
		Line        int    `json:"-"`
		ClassID     string `json:"classId" validate:"required"`
		StudentCode string `json:"studentCode" validate:"required"`
		PIN         string `json:"pin"`
		Name        string `json:"name"`
		LessonID    string `json:"lessonId"`
		Score       string `json:"score" validate:"omitempty,numeric"`
		Rank        string `json:"rank" validate:"omitempty,numeric"`
		Total       string `json:"total" validate:"omitempty,numeric"`
		Status      string `json:"status" validate:"omitempty,gradestatus"`
		Progress    string `json:"progress" validate:"omitempty,numeric,progress"`
		Remark      string `json:"remark"`
	}

	ImportSummary struct {
		OK              bool     `json:"ok"`
		Rows            int      `json:"rows"`
		CreatedStudents int      `json:"createdStudents"`
		UpdatedStudents int      `json:"updatedStudents"`
		CreatedGrades   int      `json:"createdGrades"`
		UpdatedGrades   int      `json:"updatedGrades"`
		Errors          []string `json:"errors"`
	}
)

// ParseCSV reads the whole CSV document (header row first) into records.
// A UTF-8 BOM is tolerated, blank lines are skipped and every row must have the header's field count.
func ParseCSV(r io.Reader) ([]ImportRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	rdr := csv.NewReader(bytes.NewReader(data))
	rdr.TrimLeadingSpace = true
	rows, err := rdr.ReadAll()
	if err != nil {
		return nil, &ImportError{Err: err}
	}
	return RecordsFromRows(rows), nil
}

// RecordsFromRows maps raw rows (header row first) to records by column name; unknown columns are ignored.
func RecordsFromRows(rows [][]string) []ImportRecord {
	if len(rows) == 0 {
		return []ImportRecord{}
	}
	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		col = core.CleanString(col)
		if _, dup := header[col]; !dup {
			header[col] = i
		}
	}
	cell := func(row []string, col string) string {
		if i, ok := header[col]; ok && i < len(row) {
			return core.CleanString(row[i])
		}
		return ""
	}

	records := make([]ImportRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, ImportRecord{
			Line:        len(records) + 2,
			ClassID:     cell(row, "classId"),
			StudentCode: cell(row, "studentCode"),
			PIN:         cell(row, "pin"),
			Name:        cell(row, "name"),
			LessonID:    cell(row, "lessonId"),
			Score:       cell(row, "score"),
			Rank:        cell(row, "rank"),
			Total:       cell(row, "total"),
			Status:      cell(row, "status"),
			Progress:    cell(row, "progress"),
			Remark:      cell(row, "remark"),
		})
	}
	return records
}

func isBlankRow(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "")
}

// patch builds the GradePatch of a validated record; empty cells leave fields unchanged.
func (rec ImportRecord) patch() GradePatch {
	var p GradePatch
	if f, ok := parseCell(rec.Score); ok {
		p.Score = SetNumber(f)
	}
	if f, ok := parseCell(rec.Rank); ok {
		p.Rank = SetNumber(f)
	}
	if f, ok := parseCell(rec.Total); ok {
		p.Total = SetNumber(f)
	}
	if rec.Status != "" {
		status := rec.Status
		p.Status = &status
	}
	if f, ok := parseCell(rec.Progress); ok {
		p.Progress = &f
	}
	if rec.Remark != "" {
		remark := rec.Remark
		p.Remark = &remark
	}
	return p
}

func parseCell(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Import reconciles records in order and reports what changed. Each row commits on its own.
// Row problems are collected in ImportSummary.Errors as "Dòng N: ...".
func (svc *Service) Import(records []ImportRecord) ImportSummary {
	summary := ImportSummary{OK: true, Errors: []string{}}
	for _, rec := range records {
		summary.Rows++
		svc.importRecord(rec, &summary)
	}
	return summary
}

func (svc *Service) importRecord(rec ImportRecord, summary *ImportSummary) {
	fldErrs := make(map[string]validator.FieldError)
	if err := svc.validate.Struct(rec); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Dòng %d: %v", rec.Line, err))
			return
		}
		for _, fe := range vErrs {
			fldErrs[fe.StructField()] = fe
		}
	}
	if _, ok := fldErrs["ClassID"]; ok {
		summary.Errors = append(summary.Errors, fmt.Sprintf("Dòng %d: thiếu classId hoặc studentCode", rec.Line))
		return
	}
	if _, ok := fldErrs["StudentCode"]; ok {
		summary.Errors = append(summary.Errors, fmt.Sprintf("Dòng %d: thiếu classId hoặc studentCode", rec.Line))
		return
	}

	var rowErrs []string
	var gradeCreated, graded bool
	_, existed, err := svc.repo.UpdateOrCreateStudent(rec.ClassID, rec.StudentCode, func(stu *Student, _ bool) error {
		stu.applyAttrs(StudentAttrs{PIN: rec.PIN, Name: rec.Name})

		if rec.LessonID == "" {
			return nil
		}
		if _, ok := svc.catalog.Lookup(rec.LessonID); !ok {
			rowErrs = append(rowErrs, svc.unknownLessonError(rec))
			return nil
		}
		for _, fe := range fldErrs {
			rowErrs = append(rowErrs, fmt.Sprintf("Dòng %d: %s không hợp lệ (%v)", rec.Line, fe.Field(), fe.Value()))
		}
		if len(rowErrs) > 0 {
			return nil
		}
		_, gradeCreated = ApplyGrade(stu, rec.LessonID, rec.patch())
		graded = true
		return nil
	})
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("Dòng %d: %v", rec.Line, errors.Cause(err)))
		return
	}

	if existed {
		summary.UpdatedStudents++
	} else {
		summary.CreatedStudents++
	}
	if graded {
		if gradeCreated {
			summary.CreatedGrades++
		} else {
			summary.UpdatedGrades++
		}
	}
	sort.Strings(rowErrs)
	summary.Errors = append(summary.Errors, rowErrs...)
}

func (svc *Service) unknownLessonError(rec ImportRecord) string {
	msg := fmt.Sprintf("Dòng %d: lessonId không hợp lệ (%s)", rec.Line, rec.LessonID)
	if hint, ok := svc.catalog.Closest(rec.LessonID); ok {
		msg += fmt.Sprintf(", có phải %q?", hint)
	}
	return msg
}
