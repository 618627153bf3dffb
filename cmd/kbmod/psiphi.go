package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kbmod/kbmod/internal/config"
	"github.com/kbmod/kbmod/internal/psiphi"
	"github.com/kbmod/kbmod/internal/resultio"
)

var psiphiOutDir string

var psiphiCmd = &cobra.Command{
	Use:   "psiphi <job.json5>",
	Short: "Preprocess a job's stack and dump its psi/phi planes without running a search",
	Args:  cobra.ExactArgs(1),
	RunE:  runPsiPhi,
}

func init() {
	psiphiCmd.Flags().StringVar(&psiphiOutDir, "out", "", "Directory to write psi/phi planes into (defaults to the job's psi_phi_dir)")
	rootCmd.AddCommand(psiphiCmd)
}

func runPsiPhi(cmd *cobra.Command, args []string) error {
	jobPath := args[0]
	job, err := config.LoadJob(jobPath)
	if err != nil {
		return err
	}

	s, err := config.LoadStack(job)
	if err != nil {
		return err
	}

	planes, err := psiphi.Build(s)
	if err != nil {
		return err
	}

	outDir := psiphiOutDir
	if outDir == "" {
		outDir = job.PsiPhiDir
	}
	if outDir == "" {
		outDir = "."
	}

	for i, p := range planes.Psi {
		if err := resultio.WritePsiPhi(outDir+"/psi", i, p); err != nil {
			return err
		}
	}
	for i, p := range planes.Phi {
		if err := resultio.WritePsiPhi(outDir+"/phi", i, p); err != nil {
			return err
		}
	}

	slog.Info("psi/phi planes written", "frames", s.Len(), "dir", outDir)
	return nil
}
