package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsDefaultHTTPConfig(t *testing.T) {
	// no -config: default http source has no url template
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URLTemplate")
}
