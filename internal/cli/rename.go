package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// RenameResult is the JSON payload of the rename command.
type RenameResult struct {
	ID      int64  `json:"id"`
	Comment string `json:"comment"`
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <document> <id> <comment>",
		Short: "Change the comment of a snapshot",
		Long: `Replace the comment of a snapshot. Its content and timestamp are unchanged.

Examples:
  docsnap rename scene.blend 3 "final lighting"`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(rootOpts, cmd, args[0], args[1], args[2])
		},
	}
	return cmd
}

func runRename(opts *RootOptions, cmd *cobra.Command, docArg, idArg, comment string) error {
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

	if err := m.Rename(ctx, id, comment); err != nil {
		return wrapOperationError("rename failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(RenameResult{ID: id, Comment: comment})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed snapshot %d\n", id)
	return nil
}
