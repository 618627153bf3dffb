package resultio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/kbmod/kbmod/internal/rawimage"
)

// WritePsiPhi writes one frame's psi or phi plane as a raw little-endian
// float32 blob named by frame index into dir (conventionally "psi/" or
// "phi/"), via the same atomic temp-file-then-rename pattern as
// WriteResults. No consumer may depend on its exact layout beyond
// "row-major float32, width*height elements".
func WritePsiPhi(dir string, frameIndex int, plane *rawimage.RawImage) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create diagnostic directory: %w", err)
	}

	finalPath := filepath.Join(dir, fmt.Sprintf("%04d.bin", frameIndex))
	tempPath := finalPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp plane file: %w", err)
	}

	buf := make([]byte, 4*len(plane.Data()))
	for i, v := range plane.Data() {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write plane data: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp plane file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename plane file: %w", err)
	}

	slog.Debug("diagnostic plane written", "path", finalPath, "frame", frameIndex)
	return nil
}
