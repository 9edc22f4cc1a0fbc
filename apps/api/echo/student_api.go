package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core/gradebook"
)

type studentApi struct {
	svc gradebook.ServiceInterface
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc gradebook.ServiceInterface) {
	api := studentApi{svc: svc}

	studentOnly := []echo.MiddlewareFunc{jwt, requireRole(RoleStudent)}
	g.GET("/grades", api.grades, studentOnly...)
	g.GET("/progress", api.progress, studentOnly...)
}

// contextStudent loads the session's student; a student removed since login is a 404.
func (api *studentApi) contextStudent(ctx echo.Context) (gradebook.Student, Claims, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return gradebook.Student{}, claims, errors.Wrap(err, "getting context claims")
	}
	stu, err := api.svc.FindStudent(claims.Class, claims.StudentCode)
	if err != nil {
		if errors.Cause(err) == gradebook.ErrStudentNotFound {
			return gradebook.Student{}, claims, errHttpNotFound
		}
		return gradebook.Student{}, claims, errors.Wrap(err, "finding student")
	}
	return stu, claims, nil
}

// Handlers

func (api *studentApi) grades(ctx echo.Context) error {
	stu, claims, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	grades := stu.Grades
	if grades == nil {
		grades = []gradebook.Grade{}
	}
	return ctx.JSON(http.StatusOK, StudentGradesResponse{
		Student: StudentInfo{Code: stu.Code, Name: stu.Name, Class: claims.Class},
		Lessons: api.svc.Lessons(),
		Grades:  grades,
	})
}

func (api *studentApi) progress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	progress, err := api.svc.StudentProgress(claims.Class, claims.StudentCode)
	if err != nil {
		if errors.Cause(err) == gradebook.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, ProgressResponse{Progress: progress})
}
