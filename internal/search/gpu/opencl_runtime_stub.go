//go:build !gpu

package gpu

import "errors"

// ErrNotBuilt is returned by every Runtime method in a build without
// the gpu tag.
var ErrNotBuilt = errors.New("kbmod: built without gpu tag")

// Runtime is a placeholder OpenCL context in default builds.
type Runtime struct{}

// InitOpenCL always fails in a build without the gpu tag.
func InitOpenCL() (*Runtime, error) {
	return nil, ErrNotBuilt
}

// Close is a no-op on the stub runtime.
func (r *Runtime) Close() error { return nil }

// EnumeratePlatforms always fails in a build without the gpu tag.
func (r *Runtime) EnumeratePlatforms() ([]PlatformInfo, error) {
	return nil, ErrNotBuilt
}
