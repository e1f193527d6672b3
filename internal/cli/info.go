package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <document>",
		Short: "Summarize the snapshot store of a document",
		Long: `Show the store's identity, schema version, and how many snapshots and files
it holds, with their total size before and after compression.

Examples:
  docsnap info scene.blend`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, cmd *cobra.Command, docArg string) error {
	ctx := context.Background()

	m, err := openManager(opts, docArg)
	if err != nil {
		return err
	}
	defer m.Close()

	st, err := m.Info(ctx)
	if err != nil {
		return wrapOperationError("info failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(st)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Store:       %s\n", st.Path)
	fmt.Fprintf(w, "Store ID:    %s\n", st.StoreID)
	fmt.Fprintf(w, "Created:     %s\n", st.CreatedAt.In(opts.timeLocation()).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Schema:      v%d\n", st.SchemaVersion)
	fmt.Fprintf(w, "Snapshots:   %d\n", st.Snapshots)
	fmt.Fprintf(w, "Files:       %d\n", st.Blobs)
	fmt.Fprintf(w, "Size:        %d bytes (%d stored)\n", st.RawBytes, st.StoredBytes)
	return nil
}
