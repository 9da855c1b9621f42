package logger

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	InitLogger("debug")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.Equal(t, os.Stdout, Log.Out)
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)
}

func TestInitLoggerUnknownLevel(t *testing.T) {
	InitLogger("chatty")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
