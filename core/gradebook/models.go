package gradebook

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// grade statuses
const (
	StatusNotStarted = "Chưa bắt đầu"
	StatusInProgress = "Đang làm"
	StatusSubmitted  = "Đã nộp"
)

var Statuses = []string{StatusNotStarted, StatusInProgress, StatusSubmitted}

// IsStatus reports whether s is one of Statuses.
func IsStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type (
	Lesson struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		TaskCount int    `json:"tasks"`
	}

	// Catalog is the static, read-only list of lessons.
	Catalog []Lesson

	// Grade is a student's result on one lesson. Nil Score, Rank and Total mean "not yet assessed".
	Grade struct {
		LessonID string   `json:"lessonId"`
		Score    *float64 `json:"score"`
		Rank     *float64 `json:"rank"`
		Total    *float64 `json:"total"`
		Status   string   `json:"status"`
		Progress float64  `json:"progress"`
		Remark   string   `json:"remark"`
	}

	Student struct {
		Code   string  `json:"code"`
		PIN    string  `json:"-"`
		Name   string  `json:"name"`
		Grades []Grade `json:"grades"`
	}

	Class struct {
		ID       string    `json:"classId"`
		Students []Student `json:"students"`
	}

	// StudentAttrs are applied by EnsureStudent; empty values leave the stored ones unchanged.
	StudentAttrs struct {
		PIN  string
		Name string
	}

	// ClassSummary is a class listing entry.
	ClassSummary struct {
		ClassID  string `json:"classId"`
		Students int    `json:"students"`
	}

	// GradeRow is one (student, grade) pair of a class grade listing.
	GradeRow struct {
		StudentCode string   `json:"studentCode"`
		StudentName string   `json:"studentName"`
		LessonID    string   `json:"lessonId"`
		Score       *float64 `json:"score"`
		Rank        *float64 `json:"rank"`
		Total       *float64 `json:"total"`
		Remark      string   `json:"remark"`
		Status      string   `json:"status"`
	}
)

// DefaultCatalog returns the built-in lesson catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "cauchy1", Name: "Cauchy #1", TaskCount: 10},
		{ID: "quad", Name: "Hàm bậc hai", TaskCount: 8},
		{ID: "combo", Name: "Tổ hợp", TaskCount: 12},
	}
}

func (c Catalog) Lookup(id string) (Lesson, bool) {
	for _, l := range c {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// lessonMinSim is the minimum similarity ratio for Closest to suggest a lesson.
var lessonMinSim = .6

// Closest returns the lesson id most similar to `id`, if any is similar enough.
func (c Catalog) Closest(id string) (string, bool) {
	var best string
	var bestRatio float64
	for _, l := range c {
		ratio := difflib.NewMatcher(splitChars(id), splitChars(l.ID)).Ratio()
		if ratio > bestRatio {
			best, bestRatio = l.ID, ratio
		}
	}
	return best, bestRatio >= lessonMinSim
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}

// Clone returns a deep copy of the Student.
func (stu Student) Clone() Student {
	cp := stu
	if stu.Grades != nil {
		cp.Grades = make([]Grade, len(stu.Grades))
		for i, g := range stu.Grades {
			cp.Grades[i] = g.clone()
		}
	}
	return cp
}

func (g Grade) clone() Grade {
	g.Score = copyFloat(g.Score)
	g.Rank = copyFloat(g.Rank)
	g.Total = copyFloat(g.Total)
	return g
}

// Clone returns a deep copy of the Class.
func (c Class) Clone() Class {
	cp := Class{ID: c.ID, Students: make([]Student, len(c.Students))}
	for i, stu := range c.Students {
		cp.Students[i] = stu.Clone()
	}
	return cp
}

func (stu *Student) grade(lessonID string) (*Grade, bool) {
	for i := range stu.Grades {
		if stu.Grades[i].LessonID == lessonID {
			return &stu.Grades[i], true
		}
	}
	return nil, false
}

// Rows flattens the class into one GradeRow per (student, grade); students without grades are omitted.
func (c Class) Rows() []GradeRow {
	rows := make([]GradeRow, 0, len(c.Students))
	for _, stu := range c.Students {
		for _, g := range stu.Grades {
			rows = append(rows, GradeRow{
				StudentCode: stu.Code,
				StudentName: stu.Name,
				LessonID:    g.LessonID,
				Score:       copyFloat(g.Score),
				Rank:        copyFloat(g.Rank),
				Total:       copyFloat(g.Total),
				Remark:      g.Remark,
				Status:      g.Status,
			})
		}
	}
	return rows
}

func summarize(classes []Class) []ClassSummary {
	sums := make([]ClassSummary, 0, len(classes))
	for _, c := range classes {
		sums = append(sums, ClassSummary{ClassID: c.ID, Students: len(c.Students)})
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].ClassID < sums[j].ClassID })
	return sums
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
