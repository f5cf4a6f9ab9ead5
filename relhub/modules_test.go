package relhub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeModuleTree lays out a small multi-module repository for the tests.
func writeModuleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"go.mod":          "module github.com/acme/agent\n\ngo 1.21\n\nrequire (\n\tgithub.com/acme/agent/pkg/util v0.30.0\n\tgithub.com/google/go-querystring v1.1.0\n)\n",
		"pkg/util/go.mod": "module github.com/acme/agent/pkg/util\n\ngo 1.21\n",
		// Hidden and vendored trees must not be picked up.
		".git/go.mod":   "module github.com/acme/ignored\n",
		"vendor/go.mod": "module github.com/acme/ignored\n",
		"_build/go.mod": "module github.com/acme/ignored\n",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("unexpected error on tree setup: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("unexpected error on tree setup: %v", err)
		}
	}
	return root
}

func TestDiscoverModules(t *testing.T) {
	root := writeModuleTree(t)

	modules, err := DiscoverModules(root)
	if err != nil {
		t.Fatalf("unexpected error on module discovery: %v", err)
	}
	assert.Len(t, modules, 2)

	rootModule, ok := modules["."]
	if !ok {
		t.Fatal("expected the root module to be discovered")
	}
	if rootModule.ImportPath != "github.com/acme/agent" {
		t.Errorf("unexpected root module import path: %q", rootModule.ImportPath)
	}
	// Only the sibling module counts as an internal dependency.
	assert.Equal(t, []string{"github.com/acme/agent/pkg/util"}, rootModule.Dependencies)

	utilModule, ok := modules["pkg/util"]
	if !ok {
		t.Fatal("expected the pkg/util module to be discovered")
	}
	assert.Empty(t, utilModule.Dependencies)
}

func TestTagsForVersion(t *testing.T) {
	root := writeModuleTree(t)

	modules, err := DiscoverModules(root)
	if err != nil {
		t.Fatalf("unexpected error on module discovery: %v", err)
	}

	tags := TagsForVersion(modules, mustVersion(t, "7.31.0"))
	assert.Equal(t, []string{"7.31.0", "pkg/util/7.31.0"}, tags)

	// Untagged modules are skipped.
	util := modules["pkg/util"]
	util.ShouldTag = false
	modules["pkg/util"] = util
	tags = TagsForVersion(modules, mustVersion(t, "7.31.0"))
	assert.Equal(t, []string{"7.31.0"}, tags)
}

func TestGoModuleVersion(t *testing.T) {
	cases := []struct {
		Version string
		Result  string
	}{
		{"7.31.0", "v0.31.0"},
		{"6.31.0", "v0.31.0"},
		{"7.31.1-rc.2", "v0.31.1-rc.2"},
	}
	for _, tcase := range cases {
		t.Run(tcase.Version, func(t *testing.T) {
			got, err := GoModuleVersion(mustVersion(t, tcase.Version))
			if err != nil {
				t.Fatalf("unexpected error on go module version: %v", err)
			}
			if got != tcase.Result {
				t.Errorf("unexpected go module version, expected %q, got %q", tcase.Result, got)
			}
		})
	}

	// A devel placeholder would render as a final-looking pseudo-release.
	if got, err := GoModuleVersion(mustVersion(t, "7.32.0-devel")); err == nil {
		t.Errorf("expected error on a devel version, got %q", got)
	}
}

func TestUpdateDependencies(t *testing.T) {
	root := writeModuleTree(t)

	modules, err := DiscoverModules(root)
	if err != nil {
		t.Fatalf("unexpected error on module discovery: %v", err)
	}

	if err := UpdateDependencies(root, modules, mustVersion(t, "7.31.1-rc.1")); err != nil {
		t.Fatalf("unexpected error on dependency update: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("unexpected error reading the updated go.mod: %v", err)
	}
	if !strings.Contains(string(content), "github.com/acme/agent/pkg/util v0.31.1-rc.1") {
		t.Errorf("expected the internal dependency to be pinned, got:\n%s", content)
	}
	// External requirements stay untouched.
	if !strings.Contains(string(content), "github.com/google/go-querystring v1.1.0") {
		t.Errorf("expected the external dependency to be kept, got:\n%s", content)
	}

	if err := UpdateDependencies(root, modules, mustVersion(t, "7.32.0-devel")); err == nil {
		t.Error("expected error on pinning a devel version, got none")
	}
}
