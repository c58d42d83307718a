package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks sync progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent int
	SetsInserted int64
	SetsSkipped  int64
}

// Uploader walks a directory of Alpha Progression CSV exports and POSTs the
// ones the server has not seen yet.
type Uploader struct {
	client *Client
	state  State
	dir    string
	user   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. user is "me" or a numeric user ID.
func New(client *Client, state State, dir, user string, dryRun bool, log *slog.Logger) *Uploader {
	if user == "" {
		user = "me"
	}
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		user:   user,
		dryRun: dryRun,
		log:    log,
	}
}

// Run syncs every new or changed export. A failing file is counted and
// logged; the rest still go out.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := u.exports()
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.syncFile(ctx, path); err != nil {
			u.stats.FilesErrored++
			u.log.Error("sync failed", "file", path, "error", err)
		}
	}
	return &u.stats, nil
}

// exports lists *.csv files under the directory in lexical order, which for
// Alpha's timestamped export names is chronological.
func (u *Uploader) exports() ([]string, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", u.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (u *Uploader) syncFile(ctx context.Context, path string) error {
	rel, err := filepath.Rel(u.dir, path)
	if err != nil {
		rel = path
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	done, err := u.state.IsImported(ctx, rel, hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("would upload", "file", rel)
		u.stats.FilesUploaded++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	result, err := u.client.SendAlphaExport(ctx, u.user, data)
	if err != nil {
		return err
	}
	if err := u.state.MarkImported(ctx, rel, hash); err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}

	u.stats.FilesUploaded++
	u.stats.SessionsSent += result.SessionsReceived
	u.stats.SetsInserted += result.SetsInserted
	u.stats.SetsSkipped += result.SetsSkipped
	u.log.Info("uploaded", "file", rel, "sessions", result.SessionsReceived, "sets_inserted", result.SetsInserted)
	return nil
}
