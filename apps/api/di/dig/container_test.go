package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sodiem/apps/api/echo"
	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

func TestNew(t *testing.T) {
	t.Setenv("ENV", core.EnvTest)

	c := New()
	err := c.Invoke(func(conf *core.Config, svc gradebook.ServiceInterface, server *echoapi.Server) {
		assert.Equal(t, core.EnvTest, conf.Env)
		assert.False(t, conf.Seed)

		classes, err := svc.Classes()
		require.NoError(t, err)
		assert.Empty(t, classes)

		before := importsCount.Value()
		summary := svc.Import([]gradebook.ImportRecord{{Line: 2, ClassID: "10A1", StudentCode: "10A1-001"}})
		assert.Equal(t, 1, summary.CreatedStudents)
		assert.Equal(t, before+1, importsCount.Value())

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}

func TestNew_seed(t *testing.T) {
	t.Setenv("ENV", core.EnvTest)
	t.Setenv("SEED", "true")

	err := New().Invoke(func(svc gradebook.ServiceInterface) {
		classes, err := svc.Classes()
		require.NoError(t, err)
		assert.Equal(t, []gradebook.ClassSummary{{ClassID: "10A1", Students: 2}}, classes)
	})
	require.NoError(t, err)
}
