package opencl

import (
	"os"
	"testing"
)

func TestMainProgramPath(t *testing.T) {
	_, err := os.Stat(MainProgramPath())
	if err != nil {
		t.Fatalf("expected main program to exist: %v", err)
	}
}

func TestInitNilDevice(t *testing.T) {
	if err := InitDevice(nil); err != ErrNoDevice {
		t.Fatalf("expected ErrNoDevice; got %v", err)
	}
}

func TestRoundUp(t *testing.T) {
	specs := []struct {
		n, block, exp int
	}{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
	}

	for specIndex, spec := range specs {
		if got := RoundUp(spec.n, spec.block); got != spec.exp {
			t.Errorf("[spec %d] expected RoundUp(%d, %d) to be %d; got %d", specIndex, spec.n, spec.block, spec.exp, got)
		}
	}
}
