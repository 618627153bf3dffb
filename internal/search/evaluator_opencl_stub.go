//go:build !gpu

package search

// newOpenCLEvaluator reports DeviceUnavailable in any build without the
// gpu tag. The CPU evaluator is the only backend exercised by this
// repository's default build and test run.
func newOpenCLEvaluator() (Evaluator, func(), error) {
	return nil, noopCleanup, deviceUnavailable(BackendOpenCL, "build without gpu tag")
}
