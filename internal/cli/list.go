package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docsnap/internal/model"
)

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Document  string               `json:"document"`
	Snapshots []model.SnapshotInfo `json:"snapshots"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <document>",
		Short: "List the snapshots of a document",
		Long: `List the snapshots of a document, oldest first.

Times are shown as briefly as possible: time of day for snapshots from the
last 24 hours, otherwise month and day (with the year when it is not the
current one). JSON output carries full UTC timestamps.

Examples:
  docsnap list scene.blend
  docsnap list scene.blend --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command, docArg string) error {
	ctx := context.Background()

	m, err := openManager(opts, docArg)
	if err != nil {
		return err
	}
	defer m.Close()

	infos, err := m.List(ctx)
	if err != nil {
		return wrapOperationError("list failed", err)
	}

	if opts.Format == "json" {
		for i := range infos {
			infos[i].Timestamp = infos[i].Timestamp.UTC()
		}
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(ListResult{Document: m.Document().Path, Snapshots: infos})
	}

	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(w, "No snapshots found")
		return nil
	}
	now := opts.currentTime()
	loc := opts.timeLocation()
	for _, info := range infos {
		fmt.Fprintf(w, "%4d  %s  %s\n", info.ID, formatCompactTime(info.Timestamp, now, loc), info.Comment)
	}
	return nil
}
