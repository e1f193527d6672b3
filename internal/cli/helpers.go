package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/roach88/docsnap/internal/collect"
	"github.com/roach88/docsnap/internal/model"
	"github.com/roach88/docsnap/internal/snapshot"
	"github.com/roach88/docsnap/internal/store"
)

// logReloader stands in for a host application: the CLI cannot reopen the
// document in an editor, so it tells the user to.
type logReloader struct {
	logger *slog.Logger
}

func (r logReloader) Reload(docPath string) {
	r.logger.Info("document restored; reopen it to see the snapshot", "document", docPath)
}

// openManager builds a Manager for the document argument. The caller closes it.
func openManager(opts *RootOptions, docArg string, collectOpts ...collect.Option) (*snapshot.Manager, error) {
	if docArg == "" {
		return nil, NewExitError(ExitCommandError, "document path is required")
	}
	docPath, err := filepath.Abs(docArg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid document path", err)
	}

	codec, err := store.ParseCodec(opts.Compression)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid compression setting", err)
	}
	storeOpts := store.Options{Compression: codec}
	if opts.clock != nil {
		storeOpts.Clock = opts.clock
	}

	logger := slog.Default()
	m := snapshot.New(
		model.Document{Path: docPath},
		collect.NewManifestCollector(collectOpts...),
		logReloader{logger: logger},
		snapshot.WithStoreOptions(storeOpts),
		snapshot.WithLogger(logger),
		snapshot.WithPreserveModTimes(opts.PreserveMtime),
	)
	return m, nil
}

// parseID parses a snapshot ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid snapshot id %q: must be a positive integer", arg))
	}
	return id, nil
}

func (o *RootOptions) currentTime() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

func (o *RootOptions) timeLocation() *time.Location {
	if o.location != nil {
		return o.location
	}
	return time.Local
}

// formatCompactTime renders t as briefly as possible relative to now: the
// time of day within a day of now, otherwise month and day, with the year
// in front when it differs from now's.
func formatCompactTime(t, now time.Time, loc *time.Location) string {
	t = t.In(loc)
	now = now.In(loc)

	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	if d < 24*time.Hour {
		return t.Format("15:04:05")
	}
	if t.Year() != now.Year() {
		return t.Format("2006 Jan-02 15:04")
	}
	return t.Format("Jan-02 15:04")
}
