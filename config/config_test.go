package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewSchedulerToggle(t *testing.T) {
	os.Unsetenv("SCHEDULER_DISABLED")
	assert.True(t, New().SchedulerEnabled)

	os.Setenv("SCHEDULER_DISABLED", "1")
	assert.False(t, New().SchedulerEnabled)
	os.Unsetenv("SCHEDULER_DISABLED")
}

func TestErrorStatus(t *testing.T) {
	ErrorStatus("error it borked", http.StatusBadRequest, httptest.NewRecorder(), errors.New("bad request"))
	assert.True(t, true)
}
