package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, logrus.InfoLevel, level())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, logrus.WarnLevel, level())

	t.Setenv("DEBUG", "1")
	assert.Equal(t, logrus.DebugLevel, level())
}

func TestScope(t *testing.T) {
	e := Scope("edge")
	assert.Equal(t, "edge", e.Data["scope"])
}
