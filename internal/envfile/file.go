package envfile

import (
	"fmt"
	"os"
	"sync"

	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// Adopt wraps a pre-existing secrets file. Cleanup never deletes it: the
// materializer only removes files it created itself.
func Adopt(path string) Artifact {
	return &adopted{path: path}
}

type adopted struct {
	path string
}

func (a *adopted) Path() string {
	return a.path
}

func (a *adopted) ExtraFile() *os.File {
	return nil
}

func (a *adopted) Cleanup() error {
	return nil
}

// MaterializeFile writes the blob to path verbatim with permissions 0600.
func MaterializeFile(blob secrets.Blob, path string) (Artifact, error) {
	if err := os.WriteFile(path, blob.Bytes(), 0600); err != nil {
		return nil, fmt.Errorf("failed to write secrets file %s: %w", path, err)
	}
	// WriteFile applies the mode only on create; chmod makes 0600 hold
	// even if the file appeared since the resolver checked.
	if err := os.Chmod(path, 0600); err != nil {
		return nil, fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	return &fileArtifact{path: path}, nil
}

type fileArtifact struct {
	path string
	once sync.Once
}

func (f *fileArtifact) Path() string {
	return f.path
}

func (f *fileArtifact) ExtraFile() *os.File {
	return nil
}

// Cleanup deletes the file unless a keep marker sits beside it. The marker
// is consulted at cleanup time, so one created while the child ran still
// counts, and the marker itself is never removed.
func (f *fileArtifact) Cleanup() error {
	var err error
	f.once.Do(func() {
		if _, markerErr := os.Stat(KeepMarkerPath(f.path)); markerErr == nil {
			return
		}
		if removeErr := os.Remove(f.path); removeErr != nil && !os.IsNotExist(removeErr) {
			err = fmt.Errorf("failed to remove secrets file %s: %w", f.path, removeErr)
		}
	})
	return err
}
