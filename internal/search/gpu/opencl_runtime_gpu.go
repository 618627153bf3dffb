//go:build gpu

package gpu

/*
#cgo LDFLAGS: -lOpenCL
#include <CL/cl.h>
#include <stdlib.h>

static cl_int kbmod_create_queue(cl_context ctx, cl_device_id dev, cl_command_queue *out) {
	cl_int err;
	*out = clCreateCommandQueue(ctx, dev, 0, &err);
	return err;
}
*/
import "C"

import (
	"fmt"
)

// Runtime wraps an OpenCL platform/device/context/queue chosen at
// InitOpenCL time. The gpu-tagged evaluator holds one but launches no
// kernel through it; no other package touches cgo directly.
type Runtime struct {
	platform C.cl_platform_id
	device   C.cl_device_id
	context  C.cl_context
	queue    C.cl_command_queue
}

// InitOpenCL enumerates the first available platform and GPU device and
// creates a context and command queue for it.
func InitOpenCL() (*Runtime, error) {
	var numPlatforms C.cl_uint
	if err := C.clGetPlatformIDs(0, nil, &numPlatforms); err != C.CL_SUCCESS {
		return nil, fmt.Errorf("clGetPlatformIDs (count): %s", clErrString(err))
	}
	if numPlatforms == 0 {
		return nil, fmt.Errorf("no OpenCL platforms found")
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	if err := C.clGetPlatformIDs(numPlatforms, &platforms[0], nil); err != C.CL_SUCCESS {
		return nil, fmt.Errorf("clGetPlatformIDs: %s", clErrString(err))
	}

	var device C.cl_device_id
	var chosenPlatform C.cl_platform_id
	found := false
	for _, p := range platforms {
		var numDevices C.cl_uint
		if err := C.clGetDeviceIDs(p, C.CL_DEVICE_TYPE_GPU, 1, &device, &numDevices); err == C.CL_SUCCESS && numDevices > 0 {
			chosenPlatform = p
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no OpenCL GPU device found on any platform")
	}

	var ctxErr C.cl_int
	ctx := C.clCreateContext(nil, 1, &device, nil, nil, &ctxErr)
	if ctxErr != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateContext: %s", clErrString(ctxErr))
	}

	var queue C.cl_command_queue
	if err := C.kbmod_create_queue(ctx, device, &queue); err != C.CL_SUCCESS {
		C.clReleaseContext(ctx)
		return nil, fmt.Errorf("clCreateCommandQueue: %s", clErrString(err))
	}

	return &Runtime{platform: chosenPlatform, device: device, context: ctx, queue: queue}, nil
}

// Close releases the queue and context.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.queue != nil {
		C.clReleaseCommandQueue(r.queue)
	}
	if r.context != nil {
		C.clReleaseContext(r.context)
	}
	return nil
}

// EnumeratePlatforms lists every OpenCL platform and its devices,
// independent of which one Runtime bound to — used by diagnostic
// tooling to report what hardware is visible.
func (r *Runtime) EnumeratePlatforms() ([]PlatformInfo, error) {
	var numPlatforms C.cl_uint
	if err := C.clGetPlatformIDs(0, nil, &numPlatforms); err != C.CL_SUCCESS {
		return nil, fmt.Errorf("clGetPlatformIDs (count): %s", clErrString(err))
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	if err := C.clGetPlatformIDs(numPlatforms, &platforms[0], nil); err != C.CL_SUCCESS {
		return nil, fmt.Errorf("clGetPlatformIDs: %s", clErrString(err))
	}

	out := make([]PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, PlatformInfo{
			Name:   platformString(p, C.CL_PLATFORM_NAME),
			Vendor: platformString(p, C.CL_PLATFORM_VENDOR),
		})
	}
	return out, nil
}

func platformString(p C.cl_platform_id, param C.cl_platform_info) string {
	var size C.size_t
	if C.clGetPlatformInfo(p, param, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := C.malloc(size)
	defer C.free(buf)
	if C.clGetPlatformInfo(p, param, size, buf, nil) != C.CL_SUCCESS {
		return ""
	}
	return C.GoStringN((*C.char)(buf), C.int(size)-1)
}

func clErrString(err C.cl_int) string {
	switch err {
	case C.CL_SUCCESS:
		return "success"
	case C.CL_DEVICE_NOT_FOUND:
		return "device not found"
	case C.CL_DEVICE_NOT_AVAILABLE:
		return "device not available"
	case C.CL_OUT_OF_RESOURCES:
		return "out of resources"
	case C.CL_OUT_OF_HOST_MEMORY:
		return "out of host memory"
	case C.CL_INVALID_PLATFORM:
		return "invalid platform"
	case C.CL_INVALID_DEVICE:
		return "invalid device"
	case C.CL_INVALID_CONTEXT:
		return "invalid context"
	case C.CL_INVALID_VALUE:
		return "invalid value"
	default:
		return fmt.Sprintf("opencl error %d", int(err))
	}
}
