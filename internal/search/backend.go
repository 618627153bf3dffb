package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbmod/kbmod/internal/kerr"
)

// Backend identifies a trajectory evaluator implementation.
type Backend string

const (
	BackendCPU    Backend = "cpu"
	BackendOpenCL Backend = "opencl"
)

var (
	// ErrUnknownBackend is returned when the name does not match a known backend.
	ErrUnknownBackend = errors.New("unknown evaluator backend")
	// ErrBackendNotImplemented indicates the backend is known but not yet implemented.
	ErrBackendNotImplemented = errors.New("evaluator backend not implemented")
)

var noopCleanup = func() {}

// NormalizeBackend maps arbitrary user input to a canonical backend identifier.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cpu":
		return BackendCPU
	case "gpu", "opencl", "cl":
		return BackendOpenCL
	default:
		return Backend(name)
	}
}

// SupportedBackends returns the list of backends understood by the factory.
func SupportedBackends() []Backend {
	return []Backend{BackendCPU, BackendOpenCL}
}

// NewEvaluatorForBackend constructs the requested evaluator and returns
// a cleanup hook to release any device resources. The CPU backend's
// cleanup is a no-op. Requesting opencl in a build without the gpu tag
// returns a DeviceUnavailableError (errors.Is matches kerr.ErrDeviceUnavailable).
func NewEvaluatorForBackend(name string) (Evaluator, func(), error) {
	backend := NormalizeBackend(name)

	switch backend {
	case BackendCPU:
		return NewCPUEvaluator(), noopCleanup, nil
	case BackendOpenCL:
		return newOpenCLEvaluator()
	default:
		return nil, noopCleanup, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}

// deviceUnavailable wraps kerr.DeviceUnavailableError with the
// requested backend name, used by both the default stub and the real
// gpu-tagged implementation when initialization fails.
func deviceUnavailable(backend Backend, reason string) error {
	return &kerr.DeviceUnavailableError{Backend: string(backend), Reason: reason}
}
