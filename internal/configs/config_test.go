package configs

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
}

// isolate points HOME and XDG_CONFIG_HOME at fresh temp directories so
// tests never see the real user config, and returns the fake home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  Mode
		expectErr bool
	}{
		{"File", "file", ModeFile, false},
		{"Pipe", "pipe", ModePipe, false},
		{"CaseInsensitive", "FILE", ModeFile, false},
		{"Unknown", "handle", "", true},
		{"Empty", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mode, err := ParseMode(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got mode %q", tc.input, mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) failed: %v", tc.input, err)
			}
			if mode != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, mode)
			}
		})
	}
}

func TestResolveInvocationDefaults(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	chdir(t, project)

	inv, err := ResolveInvocation(Flags{})
	if err != nil {
		t.Fatalf("ResolveInvocation failed: %v", err)
	}

	if inv.SecretsFile != ".env" {
		t.Errorf("Expected secrets file %q, got %q", ".env", inv.SecretsFile)
	}
	if inv.App != "my-service" {
		t.Errorf("Expected app %q, got %q", "my-service", inv.App)
	}
	if inv.Mode != ModeFile {
		t.Errorf("Expected mode %q, got %q", ModeFile, inv.Mode)
	}
	if inv.Backend != DefaultBackend {
		t.Errorf("Expected backend %q, got %q", DefaultBackend, inv.Backend)
	}
	if inv.ProjectConfigPath != "" {
		t.Errorf("Expected no project config, got %q", inv.ProjectConfigPath)
	}
}

func TestResolveInvocationProjectConfig(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	configPath := filepath.Join(project, "keyrun.toml")
	content := "app = \"demo\"\nmode = \"pipe\"\nsecrets_file = \".env.production\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}
	chdir(t, project)

	inv, err := ResolveInvocation(Flags{})
	if err != nil {
		t.Fatalf("ResolveInvocation failed: %v", err)
	}

	if inv.App != "demo" {
		t.Errorf("Expected app %q, got %q", "demo", inv.App)
	}
	if inv.Mode != ModePipe {
		t.Errorf("Expected mode %q, got %q", ModePipe, inv.Mode)
	}
	if inv.SecretsFile != ".env.production" {
		t.Errorf("Expected secrets file %q, got %q", ".env.production", inv.SecretsFile)
	}
	if inv.Backend != DefaultBackend {
		t.Errorf("Expected backend to stay %q, got %q", DefaultBackend, inv.Backend)
	}
	if inv.ProjectConfigPath != configPath {
		t.Errorf("Expected project config path %q, got %q", configPath, inv.ProjectConfigPath)
	}
}

func TestResolveInvocationUserConfig(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	userConfig := filepath.Join(home, ".config", "keyrun", "config.toml")
	if err := os.MkdirAll(filepath.Dir(userConfig), 0755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}
	if err := os.WriteFile(userConfig, []byte("backend = \"service\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write user config: %v", err)
	}
	chdir(t, project)

	inv, err := ResolveInvocation(Flags{})
	if err != nil {
		t.Fatalf("ResolveInvocation failed: %v", err)
	}

	if inv.Backend != "service" {
		t.Errorf("Expected backend %q, got %q", "service", inv.Backend)
	}
}

func TestResolveInvocationProjectBeatsUser(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	userConfig := filepath.Join(home, ".config", "keyrun", "config.toml")
	if err := os.MkdirAll(filepath.Dir(userConfig), 0755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}
	if err := os.WriteFile(userConfig, []byte("app = \"from-user\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write user config: %v", err)
	}
	projectConfig := filepath.Join(project, "keyrun.toml")
	if err := os.WriteFile(projectConfig, []byte("app = \"from-project\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}
	chdir(t, project)

	inv, err := ResolveInvocation(Flags{})
	if err != nil {
		t.Fatalf("ResolveInvocation failed: %v", err)
	}

	if inv.App != "from-project" {
		t.Errorf("Expected app %q, got %q", "from-project", inv.App)
	}
}

func TestResolveInvocationFlagsBeatConfig(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	projectConfig := filepath.Join(project, "keyrun.toml")
	if err := os.WriteFile(projectConfig, []byte("app = \"from-project\"\nmode = \"pipe\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}
	chdir(t, project)

	inv, err := ResolveInvocation(Flags{
		App:  "from-flag",
		Mode: "file",
	})
	if err != nil {
		t.Fatalf("ResolveInvocation failed: %v", err)
	}

	if inv.App != "from-flag" {
		t.Errorf("Expected app %q, got %q", "from-flag", inv.App)
	}
	if inv.Mode != ModeFile {
		t.Errorf("Expected mode %q, got %q", ModeFile, inv.Mode)
	}
}

func TestResolveInvocationInvalidModeInConfig(t *testing.T) {
	home := isolate(t)
	project := filepath.Join(home, "my-service")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	projectConfig := filepath.Join(project, "keyrun.toml")
	if err := os.WriteFile(projectConfig, []byte("mode = \"handle\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}
	chdir(t, project)

	_, err := ResolveInvocation(Flags{})
	if err == nil {
		t.Fatal("Expected error for invalid mode in config")
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	original := &FileConfig{App: "demo", Mode: "pipe"}
	if err := SaveTOML(path, original); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat saved file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}

	loaded := &FileConfig{}
	if err := LoadTOML(path, loaded); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if loaded.App != "demo" || loaded.Mode != "pipe" {
		t.Errorf("Round trip mismatch: got %+v", loaded)
	}
}
