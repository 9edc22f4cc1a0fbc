package gradebook

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var errNotANumber = errors.New("not a number")

// OptionalNumber is a nullable number that remembers whether it was supplied at all.
// A JSON `null` sets it with a nil Value (clear); an absent field or "" leaves Set false (unchanged).
type OptionalNumber struct {
	Set   bool
	Value *float64
}

// SetNumber returns a supplied OptionalNumber holding f.
func SetNumber(f float64) OptionalNumber {
	return OptionalNumber{Set: true, Value: &f}
}

// ClearNumber returns a supplied OptionalNumber holding null.
func ClearNumber() OptionalNumber {
	return OptionalNumber{Set: true}
}

// UnmarshalJSON accepts numbers, numeric strings and null. An empty string is not a value.
func (n *OptionalNumber) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Value = nil

	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.Set = false
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(errNotANumber, "%q", s)
		}
		n.Value = &f
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return errors.Wrapf(errNotANumber, "%s", b)
	}
	n.Value = &f
	return nil
}

func (n OptionalNumber) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// GradePatch is a partial Grade update: only supplied fields are applied.
//   - Score, Rank, Total: applied when Set (a nil Value clears them)
//   - Status: applied when non-nil and non-empty
//   - Progress: applied when non-nil
//   - Remark: applied when non-nil ("" clears it)
type GradePatch struct {
	Score    OptionalNumber
	Rank     OptionalNumber
	Total    OptionalNumber
	Status   *string
	Progress *float64
	Remark   *string
}

func (p GradePatch) apply(g *Grade) {
	if p.Score.Set {
		g.Score = copyFloat(p.Score.Value)
	}
	if p.Rank.Set {
		g.Rank = copyFloat(p.Rank.Value)
	}
	if p.Total.Set {
		g.Total = copyFloat(p.Total.Value)
	}
	if p.Status != nil && *p.Status != "" {
		g.Status = *p.Status
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.Remark != nil {
		g.Remark = *p.Remark
	}
}

// NewGrade returns the default ungraded Grade for a lesson.
func NewGrade(lessonID string) Grade {
	return Grade{LessonID: lessonID, Status: StatusNotStarted}
}

// ApplyGrade finds the student's grade for lessonID (creating and appending a default one if missing)
// then applies the patch. It returns a copy of the resulting grade and whether it was created.
func ApplyGrade(stu *Student, lessonID string, patch GradePatch) (Grade, bool) {
	g, ok := stu.grade(lessonID)
	if !ok {
		stu.Grades = append(stu.Grades, NewGrade(lessonID))
		g = &stu.Grades[len(stu.Grades)-1]
	}
	patch.apply(g)
	return g.clone(), !ok
}

// applyAttrs updates name and pin, only to non-empty new values.
func (stu *Student) applyAttrs(attrs StudentAttrs) {
	if attrs.Name != "" {
		stu.Name = attrs.Name
	}
	if attrs.PIN != "" {
		stu.PIN = attrs.PIN
	}
}
