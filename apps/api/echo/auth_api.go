package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core/gradebook"
)

type authApi struct {
	sessions   *sessions
	svc        gradebook.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(
	g *echo.Group,
	sessions *sessions,
	svc gradebook.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := authApi{
		sessions:   sessions,
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	// TODO: rate limit the login endpoints
	g.GET("/me", api.me)
	g.POST("/login-teacher", api.loginTeacher)
	g.POST("/login-student", api.loginStudent)
	g.POST("/logout", api.logout)
}

// Handlers

func (api *authApi) me(ctx echo.Context) error {
	guest := MeResponse{Role: RoleGuest}

	cookie, err := ctx.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return ctx.JSON(http.StatusOK, guest)
	}
	claims, err := api.sessions.ParseToken(cookie.Value)
	if err != nil {
		return ctx.JSON(http.StatusOK, guest)
	}
	return ctx.JSON(http.StatusOK, MeResponse{
		Role:        claims.Role,
		Class:       claims.Class,
		StudentCode: claims.StudentCode,
		TeacherID:   claims.TeacherID,
	})
}

func (api *authApi) loginTeacher(ctx echo.Context) error {
	var data TeacherLoginRequest
	if err := bind(ctx, &data, msgTeacherLoginFailed); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return errTeacherLoginFailed
	}
	if !api.sessions.checkTeacher(data.User, data.Pass) {
		return errTeacherLoginFailed
	}

	return api.startSession(ctx, api.sessions.TeacherClaims(data.User))
}

func (api *authApi) loginStudent(ctx echo.Context) error {
	var data StudentLoginRequest
	if err := bind(ctx, &data, msgMissingStudent); err != nil {
		return err
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	stu, err := api.svc.AuthenticateStudent(data.Class, data.Code, data.PIN)
	if err != nil {
		return errors.Wrap(err, "authenticating student")
	}

	return api.startSession(ctx, api.sessions.StudentClaims(data.Class, stu.Code))
}

func (api *authApi) startSession(ctx echo.Context, claims *Claims) error {
	token, err := api.sessions.GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.sessions.setCookie(ctx, token)
	return ctx.JSON(http.StatusOK, LoginResponse{OK: true, Role: claims.Role})
}

func (api *authApi) logout(ctx echo.Context) error {
	api.sessions.clearCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{OK: true})
}
