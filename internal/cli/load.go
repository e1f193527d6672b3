package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	ID       int64  `json:"id"`
	Document string `json:"document"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <document> <id>",
		Short: "Restore a snapshot over a document and its dependencies",
		Long: `Overwrite the document and every file captured with it by the content of
a snapshot. Missing files and directories are recreated. Files stored
relative to the document are restored relative to its current location.

If some files cannot be written the others are still restored, and the
command fails listing the files that were not.

Examples:
  docsnap load scene.blend 3
  docsnap load scene.blend 3 --preserve-mtime`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().Bool("preserve-mtime", false, "restore each file's modification time as captured")

	return cmd
}

func runLoad(opts *RootOptions, cmd *cobra.Command, docArg, idArg string) error {
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

	if err := m.Load(ctx, id); err != nil {
		return wrapOperationError("load failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(LoadResult{ID: id, Document: m.Document().Path})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d to %s\n", id, m.Document().Path)
	return nil
}
