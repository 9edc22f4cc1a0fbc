package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
	"github.com/trezcool/sodiem/storage/database/dummy"
)

const indexHTML = "<!doctype html><title>Sổ điểm</title>"

type testApp struct {
	*Server
	conf     *core.Config
	sessions *sessions
	svc      *gradebook.Service
	logger   *testLogger
}

// setup returns a server over a fresh store seeded with gradebook.SeedClasses.
func setup(t *testing.T, opts ...func(conf *core.Config)) *testApp {
	conf := core.NewTestConfig()
	conf.Server.StaticDir = t.TempDir()
	for _, opt := range opts {
		opt(conf)
	}
	if err := os.WriteFile(filepath.Join(conf.Server.StaticDir, spaIndex), []byte(indexHTML), 0o644); err != nil {
		t.Fatalf("writing index.html failed: %v", err)
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	db.Seed(gradebook.SeedClasses()...)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	gradebook.InitValidators(validate, translator)

	svc := gradebook.NewService(dummydb.NewClassRepository(db), gradebook.DefaultCatalog(), validate, conf)
	logger := new(testLogger)

	return &testApp{
		Server: NewServer(ServerDeps{
			Conf:       conf,
			Logger:     logger,
			GradeSvc:   svc,
			Validate:   validate,
			Translator: translator,
		}),
		conf:     conf,
		sessions: newSessions(conf),
		svc:      svc,
		logger:   logger,
	}
}

func (app *testApp) teacherToken(t *testing.T) string {
	return getToken(t, app.sessions, app.sessions.TeacherClaims(app.conf.Admin.Username))
}

func (app *testApp) studentToken(t *testing.T, classID, code string) string {
	return getToken(t, app.sessions, app.sessions.StudentClaims(classID, code))
}

// serve runs the request and returns the recorder.
func (app *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

type testLogger struct {
	mu      sync.Mutex
	entries []string
}

var _ core.Logger = (*testLogger)(nil)

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *testLogger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *testLogger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *testLogger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *testLogger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *testLogger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart request with `content` under `field`.
func newUploadRequest(t *testing.T, path, token, field, filename string, content []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = io.Copy(fw, bytes.NewReader(content)); err != nil {
			t.Fatalf("io.Copy() failed: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart.Close() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	return req
}

func getToken(t *testing.T, sess *sessions, claims *Claims) string {
	token, err := sess.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.serve(newAuthRequest(method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func errData(t *testing.T, msg string) []byte {
	return marchallObj(t, httpErr{Error: msg})
}

func fieldsErrData(t *testing.T, msg string, fields map[string]string) []byte {
	return marchallObj(t, map[string]interface{}{"error": msg, "fields": fields})
}

func jsonBody(format string, args ...interface{}) []byte {
	return []byte(fmt.Sprintf(format, args...))
}
