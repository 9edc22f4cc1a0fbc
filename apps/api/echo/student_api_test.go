package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sodiem/core/gradebook"
)

func Test_studentApi_auth(t *testing.T) {
	app := setup(t)

	expired := app.sessions.StudentClaims("10A1", "10A1-023")
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expiredToken := getToken(t, app.sessions, expired)

	var tests []httpTest
	for _, path := range []string{"/student/grades", "/student/progress"} {
		tests = append(tests,
			httpTest{
				name: path + " no cookie", path: path,
				wantCode: http.StatusUnauthorized, wantData: errData(t, "Unauthenticated"),
			},
			httpTest{
				name: path + " garbage cookie", path: path, token: "not.a.token",
				wantCode: http.StatusUnauthorized, wantData: errData(t, "Invalid token"),
			},
			httpTest{
				name: path + " expired", path: path, token: expiredToken,
				wantCode: http.StatusUnauthorized, wantData: errData(t, "Invalid token"),
			},
			httpTest{
				name: path + " teacher", path: path, token: app.teacherToken(t),
				wantCode: http.StatusForbidden, wantData: errData(t, "Forbidden"),
			},
			httpTest{
				name: path + " vanished student", path: path, token: app.studentToken(t, "10A1", "10A1-404"),
				wantCode: http.StatusNotFound, wantData: errData(t, "Not found"),
			},
		)
	}
	runHTTPTests(t, app, tests)
}

func Test_studentApi_grades(t *testing.T) {
	app := setup(t)

	seeded := gradebook.SeedClasses()[0].Students[0]
	if _, _, err := app.svc.EnsureStudent("10A2", "10A2-001", gradebook.StudentAttrs{PIN: "1111", Name: "Lê Văn Bình"}); err != nil {
		t.Fatalf("EnsureStudent() failed: %v", err)
	}

	tests := []httpTest{
		{
			name: "with grades", path: "/student/grades", token: app.studentToken(t, "10A1", seeded.Code),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, StudentGradesResponse{
				Student: StudentInfo{Code: seeded.Code, Name: seeded.Name, Class: "10A1"},
				Lessons: gradebook.DefaultCatalog(),
				Grades:  seeded.Grades,
			}),
		},
		{
			name: "without grades", path: "/student/grades", token: app.studentToken(t, "10A2", "10A2-001"),
			wantCode: http.StatusOK,
			wantData: jsonBody(`{
				"student": {"code": "10A2-001", "name": "Lê Văn Bình", "class": "10A2"},
				"lessons": %s,
				"grades": []
			}`, marchallObj(t, gradebook.DefaultCatalog())),
		},
	}
	runHTTPTests(t, app, tests)

	// pin is never exposed
	rec := app.serve(newAuthRequest(http.MethodGet, "/student/grades/", app.studentToken(t, "10A1", "10A1-005")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "5678")
	assert.NotContains(t, rec.Body.String(), `"pin"`)
}

func Test_studentApi_progress(t *testing.T) {
	app := setup(t)

	if _, _, err := app.svc.EnsureStudent("10A2", "10A2-001", gradebook.StudentAttrs{}); err != nil {
		t.Fatalf("EnsureStudent() failed: %v", err)
	}

	tests := []httpTest{
		// (100 + 40 + 0) / 3
		{
			name: "rounded mean", path: "/student/progress", token: app.studentToken(t, "10A1", "10A1-023"),
			wantCode: http.StatusOK, wantData: []byte(`{"progress": 47}`),
		},
		// (100 + 100 + 0) / 3
		{
			name: "rounded up", path: "/student/progress", token: app.studentToken(t, "10A1", "10A1-005"),
			wantCode: http.StatusOK, wantData: []byte(`{"progress": 67}`),
		},
		{
			name: "no grades", path: "/student/progress", token: app.studentToken(t, "10A2", "10A2-001"),
			wantCode: http.StatusOK, wantData: []byte(`{"progress": 0}`),
		},
	}
	runHTTPTests(t, app, tests)
}
