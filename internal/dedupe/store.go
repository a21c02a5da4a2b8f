// Package dedupe remembers the last posted report so an identical report
// is not posted twice in a row.
package dedupe

import (
	"context"
	"errors"

	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/storage"
	"go.uber.org/fx"
)

const snapshotMode = 0o644

// Store holds the previous post snapshot in a single file
type Store struct {
	files    storage.Files
	location string
}

// NewStore creates a Store for the snapshot at location
func NewStore(files storage.Files, location string) (*Store, error) {
	if location == "" {
		return nil, errs.MissingConfig("previous_tweet_file", config.EnvPrefix+"_PREVIOUS_TWEET_FILE")
	}
	return &Store{files: files, location: location}, nil
}

// NewStoreFromConfig creates a Store for the configured snapshot file
func NewStoreFromConfig(files storage.Files, cfg *config.Config) (*Store, error) {
	return NewStore(files, cfg.PreviousPostFile)
}

// IsDuplicate reports whether candidate is byte-for-byte the stored snapshot.
// No snapshot means no duplicate.
func (s *Store) IsDuplicate(ctx context.Context, candidate string) (bool, error) {
	previous, err := s.files.Read(ctx, s.location)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errs.IO("read previous post", err)
	}
	return string(previous) == candidate, nil
}

// Save overwrites the snapshot with content
func (s *Store) Save(ctx context.Context, content string) error {
	return errs.IO("save previous post", s.files.Write(ctx, s.location, []byte(content), snapshotMode))
}

// Module provides the snapshot store
var Module = fx.Module("dedupe",
	fx.Provide(NewStoreFromConfig),
)
