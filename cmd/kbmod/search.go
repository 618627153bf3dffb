package main

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbmod/kbmod/internal/config"
	"github.com/kbmod/kbmod/internal/diagplot"
	"github.com/kbmod/kbmod/internal/psiphi"
	"github.com/kbmod/kbmod/internal/resultio"
	"github.com/kbmod/kbmod/internal/search"
	"github.com/kbmod/kbmod/internal/selector"
)

var (
	backendFlag    string
	cpuProfilePath string
	memProfilePath string
	globalMaskFlag uint32
	globalMaskMin  int
)

var searchCmd = &cobra.Command{
	Use:   "search <job.json5>",
	Short: "Run an exhaustive trajectory search against a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&backendFlag, "backend", "", "Evaluator backend (cpu, opencl); overrides the job file")
	searchCmd.Flags().StringVar(&cpuProfilePath, "cpuprofile", "", "Write a CPU profile to this path")
	searchCmd.Flags().StringVar(&memProfilePath, "memprofile", "", "Write a heap profile to this path")
	searchCmd.Flags().Uint32Var(&globalMaskFlag, "global-mask-flag", 0, "Flag bits that count toward the global mask threshold")
	searchCmd.Flags().IntVar(&globalMaskMin, "global-mask-min", 0, "Pixels flagged in more than this many frames are globally masked (0 disables)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()
	log := slog.With("run_id", runID)

	if cpuProfilePath != "" {
		f, err := os.Create(cpuProfilePath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	jobPath := args[0]
	log.Info("loading job", "path", jobPath)
	job, err := config.LoadJob(jobPath)
	if err != nil {
		return err
	}

	s, err := config.LoadStack(job)
	if err != nil {
		return err
	}
	log.Info("stack loaded", "frames", s.Len(), "width", s.Width(), "height", s.Height())

	if globalMaskMin > 0 {
		s.ApplyGlobalMask(globalMaskFlag, globalMaskMin)
	}

	planes, err := psiphi.Build(s)
	if err != nil {
		return err
	}

	if job.PsiPhiDir != "" {
		for i, p := range planes.Psi {
			if err := resultio.WritePsiPhi(job.PsiPhiDir+"/psi", i, p); err != nil {
				return err
			}
		}
		for i, p := range planes.Phi {
			if err := resultio.WritePsiPhi(job.PsiPhiDir+"/phi", i, p); err != nil {
				return err
			}
		}
	}

	backendName := job.Backend
	if backendFlag != "" {
		backendName = backendFlag
	}
	evaluator, cleanup, err := search.NewEvaluatorForBackend(backendName)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info("evaluating search space", "backend", backendName, "n_v", job.Search.NV, "n_theta", job.Search.NTheta)
	started := time.Now()
	trajectories, err := evaluator.Evaluate(planes, job.Search)
	if err != nil {
		return err
	}
	log.Info("evaluation complete", "trajectories", len(trajectories), "elapsed", time.Since(started).String())

	sel := selector.New(trajectories)
	// The evaluator has already kept the top keep_fraction of the ranked
	// list, so every returned trajectory is written.
	if err := sel.SaveResults(job.ResultsPath, 1); err != nil {
		return err
	}
	log.Info("results written", "path", job.ResultsPath, "kept", sel.Len())

	if job.LikelihoodPlotPath != "" {
		if err := diagplot.PlotLikelihoodSurface(job.LikelihoodPlotPath, trajectories, s.Width(), s.Height()); err != nil {
			return err
		}
	}

	if memProfilePath != "" {
		f, err := os.Create(memProfilePath)
		if err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}

	return nil
}
