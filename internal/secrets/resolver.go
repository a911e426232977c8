package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
)

// Source identifies where a resolution's secrets came from.
type Source string

const (
	// SourceLocalFile means a pre-existing secrets file was found and the
	// keyring was never contacted.
	SourceLocalFile Source = "local-file"
	// SourceKeyring means the secrets were fetched from the keyring.
	SourceKeyring Source = "keyring"
	// SourceCaptured means the secrets were captured interactively,
	// stored, and re-fetched from the keyring.
	SourceCaptured Source = "captured"
)

// Resolution is the outcome of resolving secrets for one invocation.
type Resolution struct {
	// Source says which policy step produced the secrets.
	Source Source
	// Path is set for SourceLocalFile: the existing file to adopt.
	Path string
	// Blob holds the secret content for keyring and captured sources.
	Blob Blob
}

// Options configures Resolve.
type Options struct {
	// File is the secrets file path checked for the local short-circuit.
	File string
	// App is the keyring entry identifier.
	App string
	// Capture reads secret content when the keyring has no entry.
	// Defaults to CaptureInteractive.
	Capture CaptureFunc
	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// Resolve produces secret content for one invocation. The policy, in
// order:
//
//  1. A file at opts.File short-circuits everything. The file is adopted
//     as-is and the keyring is never contacted.
//  2. Otherwise the keyring entry for opts.App is fetched. A non-empty hit
//     wins. The backend's availability is checked here, not earlier, so
//     step 1 works without any keyring installed.
//  3. Otherwise secret content is captured from the user. Empty capture is
//     ErrNoSecretsProvided.
//  4. The captured content is stored under opts.App with a keyrun label.
//  5. The entry is fetched back to confirm the store was durable; what the
//     child sees is the re-fetched content, never the captured buffer.
func Resolve(ctx context.Context, store keyring.Store, opts Options) (*Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger

	if opts.File != "" {
		info, err := os.Stat(opts.File)
		if err == nil {
			if info.IsDir() {
				return nil, fmt.Errorf("secrets file %s is a directory", opts.File)
			}
			log.Infof("using existing secrets file %s", opts.File)
			return &Resolution{Source: SourceLocalFile, Path: opts.File}, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to check secrets file %s: %w", opts.File, err)
		}
	}

	if err := store.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}

	content, err := store.Get(opts.App)
	if err == nil {
		blob := NewBlob(content)
		if !blob.Empty() {
			log.Infof("found keyring entry for %s", opts.App)
			return &Resolution{Source: SourceKeyring, Blob: blob}, nil
		}
		log.Debugf("keyring entry for %s is empty, treating as missing", opts.App)
	} else if !errors.Is(err, kerrors.ErrSecretNotFound) {
		// Lookup failures other than a clean miss still fall through to
		// capture; if the backend is truly broken the store step below
		// will say so.
		log.Debugf("keyring lookup for %s failed: %v", opts.App, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capture := opts.Capture
	if capture == nil {
		capture = CaptureInteractive
	}
	captured, err := capture()
	if err != nil {
		return nil, err
	}
	blob := NewBlob(captured)
	if blob.Empty() {
		return nil, kerrors.ErrNoSecretsProvided
	}

	if err := store.Set(opts.App, keyring.Label(opts.App), blob.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyringStoreFailed, err)
	}

	// Never trust the captured buffer: hand the child what the keyring
	// actually persisted.
	stored, err := store.Get(opts.App)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyringRetrieveFailed, err)
	}
	log.Infof("stored secrets for %s in the keyring", opts.App)

	return &Resolution{Source: SourceCaptured, Blob: NewBlob(stored)}, nil
}
