package search

import (
	"container/heap"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/psiphi"
	"github.com/kbmod/kbmod/internal/rawimage"
)

// CPUEvaluator is the default, always-available evaluator backend. It
// partitions starting pixels into row bands and evaluates each band on
// its own goroutine behind a semaphore sized to runtime.NumCPU(), the
// same bounded worker-pool shape used for CPU-side pixel reductions
// elsewhere in this codebase's lineage. Each band owns disjoint output
// rows, so no locking is required between goroutines.
type CPUEvaluator struct{}

// NewCPUEvaluator returns the CPU fallback evaluator.
func NewCPUEvaluator() *CPUEvaluator { return &CPUEvaluator{} }

// Evaluate implements Evaluator.
func (e *CPUEvaluator) Evaluate(planes *psiphi.Planes, spec SearchSpec) ([]Trajectory, error) {
	if planes == nil || len(planes.Psi) == 0 {
		return nil, kerr.ErrEmptyStack
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	candidates := spec.Candidates()
	w, h := planes.Width, planes.Height
	times := planes.Times

	perRow := make([][]Trajectory, h)

	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(y0 int) {
			defer wg.Done()
			defer func() { <-sem }()
			row := make([]Trajectory, 0, w*spec.TopK)
			for x0 := 0; x0 < w; x0++ {
				row = append(row, evaluatePixel(planes, times, candidates, x0, y0, spec)...)
			}
			perRow[y0] = row
			slog.Default().Debug("evaluator row band complete", "y", y0, "survivors", len(row))
		}(y0)
	}
	wg.Wait()

	var all []Trajectory
	for _, row := range perRow {
		all = append(all, row...)
	}

	sortTrajectories(all)

	fraction := spec.KeepFraction
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	keep := int(math.Round(fraction * float64(len(all))))
	if keep > len(all) {
		keep = len(all)
	}
	return all[:keep], nil
}

// evaluatePixel scores every candidate for one starting pixel and
// returns its top-K survivors (by lh), via a bounded min-heap.
func evaluatePixel(planes *psiphi.Planes, times []float64, candidates []Candidate, x0, y0 int, spec SearchSpec) []Trajectory {
	h := &trajHeap{}
	heap.Init(h)

	w, height := planes.Width, planes.Height

	for _, c := range candidates {
		var sumPsi, sumPhi float64
		var obs int
		for i, t := range times {
			x := float64(x0) + c.VX*t
			y := float64(y0) + c.VY*t
			if x < 0 || y < 0 || x > float64(w-1) || y > float64(height-1) {
				continue
			}
			psiVal := planes.Psi[i].Bilinear(x, y)
			if rawimage.IsNoData(psiVal) {
				continue
			}
			phiVal := planes.Phi[i].Bilinear(x, y)
			if phiVal <= 0 {
				continue
			}
			sumPsi += float64(psiVal)
			sumPhi += float64(phiVal)
			obs++
		}
		if obs < spec.MinObs || sumPhi <= 0 {
			continue
		}
		traj := Trajectory{
			X: x0, Y: y0,
			VX: c.VX, VY: c.VY,
			Lh:       sumPsi / math.Sqrt(sumPhi),
			Flux:     sumPsi / sumPhi,
			ObsCount: obs,
		}
		if h.Len() < spec.TopK {
			heap.Push(h, traj)
		} else if h.Len() > 0 && traj.Lh > (*h)[0].Lh {
			heap.Pop(h)
			heap.Push(h, traj)
		}
	}

	out := make([]Trajectory, h.Len())
	copy(out, *h)
	return out
}

// sortTrajectories sorts in place by (lh desc, flux desc, obs desc, x, y, vx, vy).
func sortTrajectories(ts []Trajectory) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Lh != b.Lh {
			return a.Lh > b.Lh
		}
		if a.Flux != b.Flux {
			return a.Flux > b.Flux
		}
		if a.ObsCount != b.ObsCount {
			return a.ObsCount > b.ObsCount
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.VX != b.VX {
			return a.VX < b.VX
		}
		return a.VY < b.VY
	})
}

// trajHeap is a min-heap by Lh, bounded externally to size K by the
// caller's push/pop-smallest logic in evaluatePixel.
type trajHeap []Trajectory

func (h trajHeap) Len() int            { return len(h) }
func (h trajHeap) Less(i, j int) bool  { return h[i].Lh < h[j].Lh }
func (h trajHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *trajHeap) Push(x interface{}) { *h = append(*h, x.(Trajectory)) }
func (h *trajHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
