package notify

import (
	"fmt"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

// ForRun describes the outcome of a launch
func ForRun(run *domain.Run) Notification {
	n := Notification{
		RunID:  run.ID,
		Outdir: run.Outdir,
	}

	switch run.Status {
	case domain.RunSucceeded:
		n.Type = NotifySuccess
		n.Title = "scRNA-seq pipeline finished"
		n.Message = fmt.Sprintf("nf-core/scrnaseq %s completed in %s. Results: %s",
			run.Version, run.Duration().Round(1e9), run.Outdir)
	case domain.RunLaunched:
		n.Type = NotifyInfo
		n.Title = "scRNA-seq pipeline launched"
		n.Message = fmt.Sprintf("nf-core/scrnaseq %s is running in the background. Results: %s",
			run.Version, run.Outdir)
	case domain.RunFailed:
		n.Type = NotifyError
		n.Title = "scRNA-seq pipeline failed"
		code := "unknown"
		if run.ExitCode != nil {
			code = fmt.Sprint(*run.ExitCode)
		}
		n.Message = fmt.Sprintf("nf-core/scrnaseq %s exited with status %s. Logs: %s/logs",
			run.Version, code, run.Outdir)
	default:
		n.Type = NotifyWarning
		n.Title = "scRNA-seq pipeline status unknown"
		n.Message = fmt.Sprintf("run %s is %s", run.ID, run.Status)
	}

	return n
}
