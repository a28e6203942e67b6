package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/vango-dev/canopy/internal/errors"
)

// DirStore stores snapshots on the local filesystem, one directory per id.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store over it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	return &DirStore{dir: dir}, nil
}

// Path returns the directory a snapshot is stored in.
func (s *DirStore) Path(id string) string {
	return filepath.Join(s.dir, id)
}

// Save implements Store.
func (s *DirStore) Save(_ context.Context, snap *Snapshot) error {
	manifest, err := snap.MarshalManifest()
	if err != nil {
		return errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	dir := s.Path(snap.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(dir, HTMLFile), []byte(snap.HTML), 0o644); err != nil {
		return errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), manifest, 0o644); err != nil {
		return errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	return nil
}

// Load implements Store.
func (s *DirStore) Load(_ context.Context, id string) (*Snapshot, error) {
	dir := s.Path(id)
	html, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	if err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err).WithDetailf("snapshot %s", id)
	}
	manifest, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err).WithDetailf("snapshot %s", id)
	}
	return decode(html, manifest)
}

// List implements Store. Directories without a manifest are skipped.
func (s *DirStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, entry.Name(), ManifestFile)); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
