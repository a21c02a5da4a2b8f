// Package storage reads and overwrites the bot's single-file state
// (token cache, previous post snapshot). Locations are plain paths or
// any URL scheme github.com/viant/afs understands.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/viant/afs"
	"go.uber.org/fx"
)

// ErrNotFound is returned by Read when nothing exists at the location
var ErrNotFound = errors.New("file not found")

// Files is the whole-file read/overwrite contract the stores depend on
type Files interface {
	Read(ctx context.Context, location string) ([]byte, error)
	Write(ctx context.Context, location string, data []byte, mode os.FileMode) error
}

// AFSFiles implements Files on top of an afs.Service
type AFSFiles struct {
	fs afs.Service
}

// NewAFSFiles creates a Files backed by a fresh afs service
func NewAFSFiles() *AFSFiles {
	return &AFSFiles{fs: afs.New()}
}

// Read returns the whole content at location, or ErrNotFound
func (f *AFSFiles) Read(ctx context.Context, location string) ([]byte, error) {
	ok, err := f.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, ErrNotFound)
	}
	data, err := f.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

// Write replaces the content at location with data
func (f *AFSFiles) Write(ctx context.Context, location string, data []byte, mode os.FileMode) error {
	if err := f.fs.Upload(ctx, location, mode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return nil
}

// Module provides the afs-backed Files
var Module = fx.Module("storage",
	fx.Provide(
		fx.Annotate(
			NewAFSFiles,
			fx.As(new(Files)),
		),
	),
)
