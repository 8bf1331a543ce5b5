package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want logging.Level
	}{
		{"DEBUG", logging.DEBUG},
		{"warning", logging.WARNING},
		{" error ", logging.ERROR},
		{"", logging.INFO},
		{"verbose", logging.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestInitLogger_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		InitLogger("DEBUG")
		Debugf("debug %d", 1)
		Infof("info %s", "message")
		Warningf("warning")
		Errorf("error: %v", assert.AnError)
	})
}
