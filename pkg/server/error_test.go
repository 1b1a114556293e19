package server_test

import (
	"testing"

	"lintang/racemap/pkg/server"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("pebble: not found")
	err := server.WrapErrorf(orig, server.ErrNotFound, "tile %d/%d/%d not archived", 14, 1, 2)

	assert.Equal(t, "tile 14/1/2 not archived", err.Error())
	assert.True(t, errors.Is(err, orig))

	var serr *server.Error
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, server.ErrNotFound, serr.Code())
}
