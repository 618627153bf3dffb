//go:build gpu

package search

import (
	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/psiphi"
	"github.com/kbmod/kbmod/internal/search/gpu"
)

// OpenCLEvaluator is the opencl backend's evaluator. It holds an
// initialized OpenCL runtime (platform, device, context and queue) but
// does not run the grid search on the device: Evaluate validates its
// inputs and then reports DeviceUnavailable. It is only compiled with
// the gpu build tag and requires a working OpenCL installation at build
// and run time.
type OpenCLEvaluator struct {
	runtime *gpu.Runtime
}

func newOpenCLEvaluator() (Evaluator, func(), error) {
	rt, err := gpu.InitOpenCL()
	if err != nil {
		return nil, noopCleanup, deviceUnavailable(BackendOpenCL, err.Error())
	}
	ev := &OpenCLEvaluator{runtime: rt}
	cleanup := func() { rt.Close() }
	return ev, cleanup, nil
}

// Evaluate returns EmptyStackError for an empty stack and
// BadSearchSpecError for an invalid spec; otherwise it returns a
// DeviceUnavailableError. No plane is uploaded and no kernel is
// compiled or launched, so it never returns trajectories.
func (e *OpenCLEvaluator) Evaluate(planes *psiphi.Planes, spec SearchSpec) ([]Trajectory, error) {
	if planes == nil || len(planes.Psi) == 0 {
		return nil, kerr.ErrEmptyStack
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return nil, deviceUnavailable(BackendOpenCL, "kernel dispatch not implemented")
}
