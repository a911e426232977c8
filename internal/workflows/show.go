package workflows

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/keyrun-dev/keyrun/internal/configs"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// ShowOptions configures the show workflow.
type ShowOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Store is the keyring backend consulted when no local file exists.
	Store keyring.Store

	// Unmask skips key parsing; the caller prints the raw blob instead.
	Unmask bool

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// ShowResult contains the outcome of a show operation.
type ShowResult struct {
	// App is the keyring entry identifier.
	App string

	// Source says where the secrets were read from, mirroring what a run
	// would use.
	Source secrets.Source

	// Path is set for SourceLocalFile: the file that was read.
	Path string

	// Keys holds the sorted KEY names parsed from the blob. Empty when
	// Unmask was set.
	Keys []string

	// Blob is the raw secret content.
	Blob secrets.Blob
}

// Show reads the secrets a run would use, without launching anything.
// The lookup order matches the resolver: an existing local file wins,
// otherwise the keyring entry for the app.
//
// Returns ErrSecretNotFound (wrapped) when neither source has content.
func Show(ctx context.Context, opts ShowOptions) (*ShowResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation

	result := &ShowResult{App: inv.App}

	content, err := readShowSource(inv, opts.Store, result)
	if err != nil {
		return nil, err
	}
	result.Blob = secrets.NewBlob(content)

	if !opts.Unmask {
		parsed, err := godotenv.UnmarshalBytes(content)
		if err != nil {
			return nil, fmt.Errorf("parsing secrets as KEY=VALUE pairs: %w", err)
		}
		keys := make([]string, 0, len(parsed))
		for key := range parsed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		result.Keys = keys
	}

	opts.Logger.Debugf("show read %d bytes from %s", result.Blob.Len(), result.Source)
	return result, nil
}

// readShowSource loads the blob from the local file or the keyring and
// records which one served it.
func readShowSource(inv *configs.Invocation, store keyring.Store, result *ShowResult) ([]byte, error) {
	if inv.SecretsFile != "" {
		info, err := os.Stat(inv.SecretsFile)
		if err == nil {
			if info.IsDir() {
				return nil, fmt.Errorf("secrets file %s is a directory", inv.SecretsFile)
			}
			content, err := os.ReadFile(inv.SecretsFile)
			if err != nil {
				return nil, fmt.Errorf("reading secrets file %s: %w", inv.SecretsFile, err)
			}
			result.Source = secrets.SourceLocalFile
			result.Path = inv.SecretsFile
			return content, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to check secrets file %s: %w", inv.SecretsFile, err)
		}
	}

	if err := store.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}
	content, err := store.Get(inv.App)
	if err != nil {
		return nil, err
	}
	result.Source = secrets.SourceKeyring
	return content, nil
}
