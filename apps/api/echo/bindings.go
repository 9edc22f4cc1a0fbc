package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

const (
	msgMissingStudent = "Thiếu lớp hoặc mã học sinh"
	msgMissingParams  = "Thiếu tham số"
)

type (
	TeacherLoginRequest struct {
		User string `json:"user" validate:"notblank"`
		Pass string `json:"pass" validate:"notblank"`
	}

	StudentLoginRequest struct {
		Class string `json:"class" validate:"required"`
		Code  string `json:"code" validate:"required"`
		PIN   string `json:"pin"`
	}

	// GradeRequest upserts one grade. Absent or empty fields are left unchanged; `"score": null` clears the score.
	// Progress cannot be cleared, a null progress is ignored.
	GradeRequest struct {
		ClassID     string                   `json:"classId" validate:"required"`
		StudentCode string                   `json:"studentCode" validate:"required"`
		LessonID    string                   `json:"lessonId" validate:"required"`
		Score       gradebook.OptionalNumber `json:"score"`
		Rank        gradebook.OptionalNumber `json:"rank"`
		Total       gradebook.OptionalNumber `json:"total"`
		Status      *string                  `json:"status" validate:"omitempty,gradestatus"`
		Progress    gradebook.OptionalNumber `json:"progress" validate:"omitempty,progress"`
		Remark      *string                  `json:"remark"`
	}

	LoginResponse struct {
		OK   bool   `json:"ok"`
		Role string `json:"role"`
	}

	SuccessResponse struct {
		OK bool `json:"ok"`
	}

	MeResponse struct {
		Role        string `json:"role"`
		Class       string `json:"class,omitempty"`
		StudentCode string `json:"studentCode,omitempty"`
		TeacherID   string `json:"teacherId,omitempty"`
	}

	StudentInfo struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Class string `json:"class"`
	}

	StudentGradesResponse struct {
		Student StudentInfo       `json:"student"`
		Lessons gradebook.Catalog `json:"lessons"`
		Grades  []gradebook.Grade `json:"grades"`
	}

	ProgressResponse struct {
		Progress int `json:"progress"`
	}

	ClassGradesResponse struct {
		ClassID string               `json:"classId"`
		Rows    []gradebook.GradeRow `json:"rows"`
	}

	GradeResponse struct {
		OK    bool            `json:"ok"`
		Grade gradebook.Grade `json:"grade"`
	}

	ClassesResponse struct {
		Classes []gradebook.ClassSummary `json:"classes"`
	}
)

// bind decodes the request into i. A body that cannot be decoded is reported as msg, without decoder details.
func bind(ctx echo.Context, i interface{}, msg string) error {
	err := ctx.Bind(i)
	if err == nil {
		return nil
	}
	if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusBadRequest {
		return core.NewValidationError(errors.New(msg))
	}
	return errors.Wrapf(err, "binding to %T", i)
}

func (lr *TeacherLoginRequest) Validate(validate *validator.Validate) error {
	lr.User = core.CleanString(lr.User)
	return validate.Struct(lr)
}

func (lr *StudentLoginRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	lr.Class = core.CleanString(lr.Class)
	lr.Code = core.CleanString(lr.Code)
	lr.PIN = core.CleanString(lr.PIN)
	return core.ValidationErrorFrom(validate.Struct(lr), translator, msgMissingStudent)
}

func (gr *GradeRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	gr.ClassID = core.CleanString(gr.ClassID)
	gr.StudentCode = core.CleanString(gr.StudentCode)
	gr.LessonID = core.CleanString(gr.LessonID)
	if gr.Status != nil {
		status := core.CleanString(*gr.Status)
		gr.Status = &status
	}
	return core.ValidationErrorFrom(validate.Struct(gr), translator, msgMissingParams)
}

func (gr GradeRequest) Patch() gradebook.GradePatch {
	return gradebook.GradePatch{
		Score:    gr.Score,
		Rank:     gr.Rank,
		Total:    gr.Total,
		Status:   gr.Status,
		Progress: gr.Progress.Value,
		Remark:   gr.Remark,
	}
}
