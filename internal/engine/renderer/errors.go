package renderer

import (
	"errors"
	"strings"
)

// ErrOutOfMemory marks GPU allocation failures. Callers must treat any
// error wrapping it as fatal; skipping the frame and continuing would
// only fail again.
var ErrOutOfMemory = errors.New("gpu out of memory")

// isSurfaceLoss reports whether a texture acquisition error means the
// surface is lost or outdated and should be recreated. The native layer
// surfaces these conditions as strings, so classification matches on the
// message.
func isSurfaceLoss(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "surface has changed") ||
		strings.Contains(msg, "lost") ||
		strings.Contains(msg, "outdated")
}

// isOutOfMemory reports whether an error is a GPU memory exhaustion
// condition.
func isOutOfMemory(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "out of memory")
}
