package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

const msgTeacherLoginFailed = "Sai thông tin giáo viên"

var (
	errUnauthenticated      = echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
	errInvalidToken         = echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "Not found")
	errTeacherLoginFailed   = echo.NewHTTPError(http.StatusUnauthorized, msgTeacherLoginFailed)
	errMissingFile          = echo.NewHTTPError(http.StatusBadRequest, "Thiếu file CSV (field name: file)")
	errFileTooLarge         = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File quá lớn")
	errMissingClassID       = echo.NewHTTPError(http.StatusBadRequest, "Thiếu classId")
	errInvalidImport        = echo.NewHTTPError(http.StatusBadRequest, "CSV không hợp lệ hoặc lỗi khi đọc file.")
	errUnsupportedExportFmt = echo.NewHTTPError(http.StatusBadRequest, "format không hợp lệ (csv hoặc xlsx)")
)

// domainErrCode returns the status a gradebook sentinel error is served with.
func domainErrCode(err error) (int, bool) {
	switch err {
	case gradebook.ErrClassNotFound, gradebook.ErrStudentNotFound:
		return http.StatusNotFound, true
	case gradebook.ErrUnknownStudent, gradebook.ErrInvalidPIN:
		return http.StatusUnauthorized, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if c, ok := domainErrCode(cause); ok {
			code = c
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = errUnauthenticated.Code
					message = errUnauthenticated.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					} else if _, ok := origErr.Internal.(*jwt.ValidationError); ok {
						origErr = errInvalidToken
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = echo.Map{"error": http.StatusText(code), "fields": fldErrs}
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = echo.Map{"error": origErr.Error(), "fields": fldErrs}
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			case *gradebook.ImportError:
				// do not leak parser internals
				logger.Warn("rejected import file", err, sessionPerson(ctx))
				code = errInvalidImport.Code
				message = errInvalidImport.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				logger.Error(msg, errors.Wrap(err, msg), sessionPerson(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		body := echo.Map{}
		if m, ok := message.(echo.Map); ok {
			for k, v := range m {
				body[k] = v
			}
		} else {
			body["error"] = message
		}
		if ctx.Echo().Debug {
			body["debug"] = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func sessionPerson(ctx echo.Context) core.Person {
	if claims, err := getContextClaims(ctx); err == nil {
		return claims.Person()
	}
	return core.Person{}
}
