package logsvc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sodiem/core"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	conf := core.NewTestConfig()
	logger := NewLogger(&buf, "API : ", conf)

	prsn := core.Person{ID: "teacher:admin", Username: "admin"}
	logger.Error("importing students", errors.New("bad quote"), prsn)
	logger.Info("Application initializing")

	out := buf.String()
	assert.Contains(t, out, "ERROR importing students")
	assert.Contains(t, out, "bad quote")
	assert.Contains(t, out, "INFO Application initializing")
	assert.NotContains(t, out, "teacher:admin", "person must not be printed")
	assert.Equal(t, 3, strings.Count(out, "API : "))
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	err := errors.New("boom")
	prsn := core.Person{ID: "student:10A1/10A1-023"}

	args := logger.prepare("msg", []interface{}{err, prsn, core.Person{ID: "other"}})
	assert.Equal(t, []interface{}{"msg", err}, args)
}
