package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	ID int64 `json:"id"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document> <id>",
		Short: "Delete a snapshot",
		Long: `Delete one snapshot and the files stored with it. Other snapshots are
unaffected and snapshot IDs are never reused.

Examples:
  docsnap delete scene.blend 2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runDelete(opts *RootOptions, cmd *cobra.Command, docArg, idArg string) error {
	ctx := context.Background()

	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	m, err := openManager(opts, docArg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Delete(ctx, id); err != nil {
		return wrapOperationError("delete failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(DeleteResult{ID: id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %d\n", id)
	return nil
}
