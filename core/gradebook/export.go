package gradebook

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Columns is the import/export column layout, in order.
var Columns = []string{
	"classId", "studentCode", "pin", "name", "lessonId",
	"score", "rank", "total", "status", "progress", "remark",
}

// ExportRow is one (student, grade) line of an export. Grade fields are empty for students without grades.
type ExportRow struct {
	ClassID     string
	StudentCode string
	PIN         string
	Name        string
	LessonID    string
	Score       *float64
	Rank        *float64
	Total       *float64
	Status      string
	Progress    *float64
	Remark      string
}

// Record renders the row in Columns order; nil numbers render empty.
func (r ExportRow) Record() []string {
	return []string{
		r.ClassID, r.StudentCode, r.PIN, r.Name, r.LessonID,
		formatNumber(r.Score), formatNumber(r.Rank), formatNumber(r.Total),
		r.Status, formatNumber(r.Progress), r.Remark,
	}
}

func formatNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// FlattenClass returns one row per (student, grade); a student with zero grades yields one row with empty grade fields.
func FlattenClass(cls Class) []ExportRow {
	rows := make([]ExportRow, 0, len(cls.Students))
	for _, stu := range cls.Students {
		base := ExportRow{ClassID: cls.ID, StudentCode: stu.Code, PIN: stu.PIN, Name: stu.Name}
		if len(stu.Grades) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, g := range stu.Grades {
			row := base
			row.LessonID = g.LessonID
			row.Score = copyFloat(g.Score)
			row.Rank = copyFloat(g.Rank)
			row.Total = copyFloat(g.Total)
			row.Status = g.Status
			row.Progress = Float(g.Progress)
			row.Remark = g.Remark
			rows = append(rows, row)
		}
	}
	return rows
}

func (svc *Service) ExportRows(classID string) ([]ExportRow, error) {
	cls, err := svc.repo.GetClass(classID)
	if err != nil {
		return nil, err
	}
	return FlattenClass(cls), nil
}

// WriteCSV writes the header row followed by rows.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

// WriteTemplate writes the header-only CSV.
func WriteTemplate(w io.Writer) error {
	return WriteCSV(w, nil)
}

// ExportFilename is the attachment name of a class export with the given extension ("csv", "xlsx").
func ExportFilename(classID, ext string) string {
	return "students_" + classID + "." + ext
}

const TemplateFilename = "students_template.csv"
