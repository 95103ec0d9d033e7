package renderer

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSurfaceLoss(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("The underlying surface has changed, and therefore the swap chain must be updated"), true},
		{errors.New("Surface image is Lost"), true},
		{errors.New("surface is Outdated"), true},
		// A slow acquire skips the frame, it does not recreate the surface.
		{errors.New("Timeout while acquiring image"), false},
		{errors.New("validation error: invalid bind group"), false},
	}
	for _, tc := range cases {
		if got := isSurfaceLoss(tc.err); got != tc.want {
			t.Errorf("isSurfaceLoss(%v): expected %v, got %v", tc.err, tc.want, got)
		}
	}
}

func TestIsOutOfMemory(t *testing.T) {
	if !isOutOfMemory(errors.New("Device out of memory")) {
		t.Error("expected OOM message to classify as out of memory")
	}
	if isOutOfMemory(errors.New("surface lost")) {
		t.Error("expected non-OOM message to not classify")
	}
	if isOutOfMemory(nil) {
		t.Error("expected nil to not classify")
	}
}

func TestErrOutOfMemoryWrapping(t *testing.T) {
	err := fmt.Errorf("acquiring surface texture: %w: device out of memory", ErrOutOfMemory)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Error("expected wrapped error to match ErrOutOfMemory")
	}
}
