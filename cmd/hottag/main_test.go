package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMissingArgument(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"scrape-champions"}, &out, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "accepts 1 arg(s), received 0")
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOTTAG_STORE_DRIVER", "sqlite")

	var out bytes.Buffer
	code := run([]string{"scrape-all-champions"}, &out, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "invalid config")
	assert.NotContains(t, out.String(), "Usage:")
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"version"}, &out, &out))
	assert.Contains(t, out.String(), "hottag dev")
}
