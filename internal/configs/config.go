package configs

import (
	"fmt"
	"os"
	"strings"

	"github.com/keyrun-dev/keyrun/internal/utils"
)

// Mode selects how resolved secrets are exposed to the child process.
type Mode string

const (
	// ModeFile writes the secrets to a regular file the child can open.
	ModeFile Mode = "file"
	// ModePipe exposes the secrets through an anonymous pipe with no
	// directory entry, readable exactly once.
	ModePipe Mode = "pipe"
)

const (
	// DefaultSecretsFile is the conventional env file name.
	DefaultSecretsFile = ".env"
	// DefaultBackend execs secret-tool(1) against the platform keyring.
	DefaultBackend = "secret-tool"
)

// ParseMode validates a mode string from a flag or config file.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeFile:
		return ModeFile, nil
	case ModePipe:
		return ModePipe, nil
	default:
		return "", fmt.Errorf("invalid mode %q (expected %q or %q)", s, ModeFile, ModePipe)
	}
}

// FileConfig holds the keys accepted in keyrun.toml and in the user config
// file. Zero values mean "not set".
type FileConfig struct {
	SecretsFile string `toml:"secrets_file"`
	App         string `toml:"app"`
	Mode        string `toml:"mode"`
	Backend     string `toml:"backend"`
}

// Invocation is the fully resolved configuration for a single command run.
// It is built once in the command layer and passed down explicitly; nothing
// below the command layer reads flags or config files.
type Invocation struct {
	// SecretsFile is the path checked for a pre-existing secrets file, and
	// the artifact path in file mode.
	SecretsFile string
	// App identifies the keyring entry.
	App string
	// Mode selects file or pipe exposure.
	Mode Mode
	// Backend names the secret store implementation.
	Backend string
	// ProjectConfigPath is the keyrun.toml the invocation was resolved
	// from, or empty when none was found.
	ProjectConfigPath string
}

// Flags carries command-line overrides. Empty strings mean the flag was not
// provided.
type Flags struct {
	SecretsFile string
	App         string
	Mode        string
	Backend     string
}

// LoadUserConfig loads the user-level configuration, if present.
func LoadUserConfig() (*FileConfig, error) {
	configPath, err := UserConfigPath()
	if err != nil {
		return nil, err
	}

	config := &FileConfig{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return config, nil
}

// LoadProjectConfig walks up from the working directory to find keyrun.toml.
// Returns the parsed config and its path, or an empty config and an empty
// path when no file was found.
func LoadProjectConfig() (*FileConfig, string, error) {
	configPath, err := utils.FindProjectConfig()
	if err != nil {
		return nil, "", err
	}

	config := &FileConfig{}

	if configPath == "" {
		return config, "", nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, "", fmt.Errorf("failed to load project config %s: %w", configPath, err)
	}

	return config, configPath, nil
}

// ResolveInvocation merges flags, project config, user config, and built-in
// defaults, in that order of precedence.
func ResolveInvocation(flags Flags) (*Invocation, error) {
	defaultApp, err := utils.DefaultAppName()
	if err != nil {
		return nil, err
	}

	inv := &Invocation{
		SecretsFile: DefaultSecretsFile,
		App:         defaultApp,
		Mode:        ModeFile,
		Backend:     DefaultBackend,
	}

	userConfig, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFileConfig(inv, userConfig); err != nil {
		return nil, fmt.Errorf("invalid user config: %w", err)
	}

	projectConfig, projectPath, err := LoadProjectConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFileConfig(inv, projectConfig); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", projectPath, err)
	}
	inv.ProjectConfigPath = projectPath

	if flags.SecretsFile != "" {
		inv.SecretsFile = flags.SecretsFile
	}
	if flags.App != "" {
		inv.App = flags.App
	}
	if flags.Backend != "" {
		inv.Backend = flags.Backend
	}
	if flags.Mode != "" {
		mode, err := ParseMode(flags.Mode)
		if err != nil {
			return nil, err
		}
		inv.Mode = mode
	}

	return inv, nil
}

// applyFileConfig overlays non-empty file config values onto inv. A bad mode
// string in a config file is an error, not silently ignored.
func applyFileConfig(inv *Invocation, config *FileConfig) error {
	if config.SecretsFile != "" {
		inv.SecretsFile = config.SecretsFile
	}
	if config.App != "" {
		inv.App = config.App
	}
	if config.Backend != "" {
		inv.Backend = config.Backend
	}
	if config.Mode != "" {
		mode, err := ParseMode(config.Mode)
		if err != nil {
			return err
		}
		inv.Mode = mode
	}
	return nil
}
