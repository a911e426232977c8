package keep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keyrun-dev/keyrun/test/integration/shared"
)

func TestKeep_CreateAndRemove(t *testing.T) {
	projectDir := shared.SetupTestEnvironment(t)
	markerPath := filepath.Join(projectDir, ".env.keep")

	output, err := shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"keep"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err != nil {
		t.Fatalf("keep failed: %v", err)
	}
	if !strings.Contains(output, "Keep marker created") {
		t.Errorf("Expected a created message, got: %s", output)
	}
	if _, err := os.Stat(markerPath); err != nil {
		t.Fatalf("Marker file missing: %v", err)
	}

	output, err = shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"keep", "--remove"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err != nil {
		t.Fatalf("keep --remove failed: %v", err)
	}
	if !strings.Contains(output, "Keep marker removed") {
		t.Errorf("Expected a removed message, got: %s", output)
	}
	if _, err := os.Stat(markerPath); !os.IsNotExist(err) {
		t.Errorf("Marker should be gone, stat err: %v", err)
	}
}

func TestKeep_PreservesFileAcrossRun(t *testing.T) {
	projectDir := shared.SetupTestEnvironment(t)
	shared.InstallFakeSecretTool(t)
	shared.SeedFakeEntry(t, "demo", []byte("A=1\n"))

	_, err := shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"keep"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err != nil {
		t.Fatalf("keep failed: %v", err)
	}

	_, err = shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"run", "--app", "demo", "--", "true"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// The marker protected the materialized file from cleanup.
	content, err := os.ReadFile(filepath.Join(projectDir, ".env"))
	if err != nil {
		t.Fatalf("Expected the secrets file to survive the run: %v", err)
	}
	if string(content) != "A=1\n" {
		t.Errorf("Preserved file holds %q", content)
	}
}

func TestKeep_AlreadyExists(t *testing.T) {
	shared.SetupTestEnvironment(t)

	_, err := shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"keep"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err != nil {
		t.Fatalf("keep failed: %v", err)
	}

	output, err := shared.CaptureOutput(func() error {
		cli := shared.CreateTestCLI([]string{"keep"}, nil, nil, false, false)
		return cli.Execute()
	})
	if err == nil {
		t.Fatal("Expected an error for a second keep")
	}
	if !strings.Contains(output, "--remove") {
		t.Errorf("Expected a remove hint, got: %s", output)
	}
}
