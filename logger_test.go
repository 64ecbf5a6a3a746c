package europepmc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn")

	log.Info("hidden")
	log.Warn("shown", "pmcid", "PMC1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "pmcid=PMC1")
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "chatty")

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
