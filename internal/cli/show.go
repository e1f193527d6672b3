package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/docsnap/internal/model"
)

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	ID    int64            `json:"id"`
	Files []model.BlobInfo `json:"files"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <document> <id>",
		Short: "List the files stored in a snapshot",
		Long: `List the files stored in a snapshot with their kind, size and storage
codec. With --verbose the content digest is shown as well.

Examples:
  docsnap show scene.blend 3
  docsnap show scene.blend 3 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, docArg, idArg string) error {
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

	files, err := m.Show(ctx, id)
	if err != nil {
		return wrapOperationError("show failed", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(ShowResult{ID: id, Files: files})
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if opts.Verbose {
		fmt.Fprintln(tw, "FILE\tKIND\tSIZE\tSTORED\tCODEC\tDIGEST")
	} else {
		fmt.Fprintln(tw, "FILE\tKIND\tSIZE\tSTORED\tCODEC")
	}
	for _, b := range files {
		if opts.Verbose {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", b.Identity, b.Kind, b.Size, b.StoredSize, b.Codec, b.Digest)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", b.Identity, b.Kind, b.Size, b.StoredSize, b.Codec)
		}
	}
	return tw.Flush()
}
