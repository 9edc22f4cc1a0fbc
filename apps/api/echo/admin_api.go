package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

const (
	uploadField  = "file"
	mimeCSV      = "text/csv; charset=utf-8"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	formatCSV    = "csv"
	formatXLSX   = "xlsx"
	formatParam  = "format"
	classIDParam = "classId"
)

type adminApi struct {
	conf       *core.Config
	logger     core.Logger
	svc        gradebook.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	logger core.Logger,
	svc gradebook.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := adminApi{
		conf:       conf,
		logger:     logger,
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	// guards go on each route: unmatched paths under /admin must still reach the SPA
	teacherOnly := []echo.MiddlewareFunc{jwt, requireRole(RoleTeacher)}
	g.GET("/lessons", api.lessons, teacherOnly...)
	g.GET("/classes", api.classes, teacherOnly...)
	g.GET("/class/:classId/grades", api.classGrades, teacherOnly...)
	g.POST("/grade", api.upsertGrade, teacherOnly...)
	g.POST("/import-students", api.importStudents, teacherOnly...)
	g.GET("/export-students", api.exportStudents, teacherOnly...)
	g.GET("/template-students", api.templateStudents, teacherOnly...)
}

// Handlers

func (api *adminApi) lessons(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Lessons())
}

func (api *adminApi) classes(ctx echo.Context) error {
	sums, err := api.svc.Classes()
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, ClassesResponse{Classes: sums})
}

func (api *adminApi) classGrades(ctx echo.Context) error {
	classID := ctx.Param(classIDParam)
	rows, err := api.svc.ClassGrades(classID)
	if err != nil {
		return errors.Wrap(err, "listing class grades")
	}
	return ctx.JSON(http.StatusOK, ClassGradesResponse{ClassID: classID, Rows: rows})
}

func (api *adminApi) upsertGrade(ctx echo.Context) error {
	var data GradeRequest
	if err := bind(ctx, &data, msgMissingParams); err != nil {
		return err
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	grade, _, err := api.svc.UpsertGrade(data.ClassID, data.StudentCode, data.LessonID, data.Patch())
	if err != nil {
		return errors.Wrap(err, "upserting grade")
	}
	return ctx.JSON(http.StatusOK, GradeResponse{OK: true, Grade: grade})
}

func (api *adminApi) importStudents(ctx echo.Context) error {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return errMissingFile
	}
	if fh.Size > api.conf.Server.MaxUploadSize {
		return errFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return &gradebook.ImportError{Err: err}
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	var records []gradebook.ImportRecord
	if strings.EqualFold(filepath.Ext(fh.Filename), "."+formatXLSX) {
		records, err = gradebook.ParseXLSX(file)
	} else {
		records, err = gradebook.ParseCSV(file)
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %q", fh.Filename)
	}

	summary := api.svc.Import(records)
	api.logger.Info(
		fmt.Sprintf("imported %q: %d rows, %d errors", fh.Filename, summary.Rows, len(summary.Errors)),
		sessionPerson(ctx),
	)
	return ctx.JSON(http.StatusOK, summary)
}

func (api *adminApi) exportStudents(ctx echo.Context) error {
	classID := core.CleanString(ctx.QueryParam(classIDParam))
	if classID == "" {
		return errMissingClassID
	}
	format := core.CleanString(ctx.QueryParam(formatParam), true /* lower */)
	if format == "" {
		format = formatCSV
	}
	if format != formatCSV && format != formatXLSX {
		return errUnsupportedExportFmt
	}

	rows, err := api.svc.ExportRows(classID)
	if err != nil {
		return errors.Wrap(err, "exporting class")
	}

	var buf bytes.Buffer
	contentType := mimeCSV
	if format == formatXLSX {
		contentType = mimeXLSX
		err = gradebook.WriteXLSX(&buf, rows)
	} else {
		err = gradebook.WriteCSV(&buf, rows)
	}
	if err != nil {
		return errors.Wrap(err, "writing export")
	}
	return attachment(ctx, gradebook.ExportFilename(classID, format), contentType, buf.Bytes())
}

func (api *adminApi) templateStudents(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := gradebook.WriteTemplate(&buf); err != nil {
		return errors.Wrap(err, "writing template")
	}
	return attachment(ctx, gradebook.TemplateFilename, mimeCSV, buf.Bytes())
}

func attachment(ctx echo.Context, filename, contentType string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, contentType, data)
}
