package echoapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/sodiem/core"
)

// session roles
const (
	RoleGuest   = "guest"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

const (
	cookieName      = "token"
	contextTokenKey = "sessionToken"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Claims represents the session claims transmitted via the `token` cookie.
type Claims struct {
	jwt.StandardClaims
	Role        string `json:"role"`
	TeacherID   string `json:"teacherId,omitempty"`
	Class       string `json:"class,omitempty"`
	StudentCode string `json:"studentCode,omitempty"`
}

// Person returns the identity to attach to log entries.
func (c Claims) Person() core.Person {
	switch c.Role {
	case RoleTeacher:
		return core.Person{ID: c.Subject, Username: c.TeacherID}
	case RoleStudent:
		return core.Person{ID: c.Subject, Username: c.StudentCode}
	}
	return core.Person{}
}

// sessions issues and verifies session tokens.
type sessions struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newSessions(conf *core.Config) *sessions {
	return &sessions{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
			TokenLookup:   "cookie:" + cookieName,
		},
	}
}

// middleware returns the JWT auth middleware reading the session cookie.
func (s *sessions) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(s.jwtConfig)
}

func (s *sessions) newClaims(role, subject string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    s.conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(s.conf.Server.SessionTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: role,
	}
}

func (s *sessions) TeacherClaims(teacherID string) *Claims {
	claims := s.newClaims(RoleTeacher, "teacher:"+teacherID)
	claims.TeacherID = teacherID
	return claims
}

func (s *sessions) StudentClaims(classID, code string) *Claims {
	claims := s.newClaims(RoleStudent, "student:"+classID+"/"+code)
	claims.Class = classID
	claims.StudentCode = code
	return claims
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func (s *sessions) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies a token string and returns its claims.
func (s *sessions) ParseToken(token string) (*Claims, error) {
	claims := new(Claims)
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.jwtConfig.SigningMethod {
			return nil, errUnexpectedSigningMethod
		}
		return s.jwtConfig.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (s *sessions) setCookie(ctx echo.Context, token string) {
	ttl := s.conf.Server.SessionTTL
	ctx.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.conf.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessions) clearCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.conf.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// checkTeacher validates the shared admin credential. Login is disabled while no admin username is configured.
func (s *sessions) checkTeacher(username, password string) bool {
	admin := s.conf.Admin
	if admin.Username == "" || subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) != 1 {
		return false
	}
	if admin.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil
	}
	return admin.Password != "" && subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthenticated
}
