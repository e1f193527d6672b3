package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docsnap/internal/model"
)

// VerifyProblem describes one damaged snapshot.
type VerifyProblem struct {
	SnapshotID int64  `json:"snapshot_id"`
	File       string `json:"file"`
	Message    string `json:"message"`
}

// VerifyResult holds verification results.
type VerifyResult struct {
	Valid     bool            `json:"valid"`
	Snapshots int             `json:"snapshots"`
	Files     int             `json:"files"`
	Problems  []VerifyProblem `json:"problems,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <document>",
		Short: "Check every stored file against its digest",
		Long: `Read back every snapshot of a document and check each stored file
against the size and digest recorded when it was saved. Nothing is written.

Exits with status 1 when any snapshot is damaged.

Examples:
  docsnap verify scene.blend
  docsnap verify scene.blend --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command, docArg string) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := openManager(opts, docArg)
	if err != nil {
		return err
	}
	defer m.Close()

	report, err := m.Verify(ctx)
	if err != nil {
		return wrapOperationError("verify failed", err)
	}
	formatter.VerboseLog("Checked %d file(s) in %d snapshot(s)", report.Files, report.Snapshots)

	result := VerifyResult{
		Valid:     len(report.Problems) == 0,
		Snapshots: report.Snapshots,
		Files:     report.Files,
	}
	for _, p := range report.Problems {
		result.Problems = append(result.Problems, VerifyProblem{
			SnapshotID: p.SnapshotID,
			File:       p.Path,
			Message:    p.Error(),
		})
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d snapshot(s) verified\n", result.Snapshots)
		return nil
	}
	return outputVerifyProblems(formatter, result)
}

// outputVerifyProblems reports damaged snapshots.
func outputVerifyProblems(formatter *OutputFormatter, result VerifyResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("verification failed: %d damaged snapshot(s)", len(result.Problems)))
	exitErr.Reported = true

	if formatter.Format == "json" {
		first := result.Problems[0]
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    string(model.CodeCorruptBlob),
				Message: first.Message,
			},
		})
		if err != nil {
			return err
		}
		return exitErr
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Verification failed")
	fmt.Fprintln(formatter.Writer)
	for _, p := range result.Problems {
		fmt.Fprintf(formatter.Writer, "  snapshot %d: %s\n", p.SnapshotID, p.Message)
	}
	return exitErr
}
