package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docsnap/internal/collect"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Message  string
	Manifest string
}

// SaveResult is the JSON payload of the save command.
type SaveResult struct {
	ID       int64  `json:"id"`
	Document string `json:"document"`
	Comment  string `json:"comment"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <document>",
		Short: "Save a snapshot of a document and its dependencies",
		Long: `Capture the document and every file listed in its dependency manifest
as a new snapshot. Saving the same content twice creates two snapshots.

Examples:
  docsnap save scene.blend -m "before relighting"
  docsnap save scene.blend --manifest deps.yaml --compression none`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "snapshot comment")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "dependency manifest (default <document>.deps.yaml)")
	cmd.Flags().String("compression", "zstd", "compression for stored files (zstd|none)")

	return cmd
}

func runSave(opts *SaveOptions, cmd *cobra.Command, docArg string) error {
	ctx := context.Background()

	var collectOpts []collect.Option
	if opts.Manifest != "" {
		collectOpts = append(collectOpts, collect.WithManifestPath(opts.Manifest))
	}

	m, err := openManager(opts.RootOptions, docArg, collectOpts...)
	if err != nil {
		return err
	}
	defer m.Close()

	id, err := m.Save(ctx, opts.Message)
	if err != nil {
		return wrapOperationError("save failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(SaveResult{ID: id, Document: m.Document().Path, Comment: opts.Message})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %d of %s\n", id, m.Document().Path)
	return nil
}
