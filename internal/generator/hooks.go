package generator

import (
	"github.com/alnah/go-xmd/internal/image"
)

// DebugDir is the output directory of debug dumps.
const DebugDir = "/__debug"

// Hooks observe a generation. Nil fields are no-ops.
type Hooks struct {
	// Debug receives named dumps of the tree before and after the
	// transformer passes.
	Debug func(name string, data []byte)
	// Progress reports how many top-level nodes have been rendered.
	Progress func(done, total int)
}

func (h Hooks) withDefaults() Hooks {
	if h.Debug == nil {
		h.Debug = func(string, []byte) {}
	}
	if h.Progress == nil {
		h.Progress = func(int, int) {}
	}
	return h
}

// DebugToImage returns a Debug hook storing dumps in img under DebugDir.
// A dump whose path is already taken is dropped.
func DebugToImage(img *image.Image) func(name string, data []byte) {
	return func(name string, data []byte) {
		_ = img.AddBytes(data, DebugDir+"/"+name)
	}
}
