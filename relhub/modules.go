package relhub

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/relhub/relhub-core/providers/versioneer"
)

// Module describes one Go module of the coordinated repository tree.
type Module struct {
	// Path is the module directory relative to the repository root,
	// "." for the root module.
	Path string
	// ImportPath is the module path declared in the module's go.mod.
	ImportPath string
	// Dependencies lists the import paths of the sibling modules this
	// module requires.
	Dependencies []string
	// ShouldTag reports whether releases of this module are tagged.
	ShouldTag bool
}

// Tags returns the git tags to create for the module at the given release
// version. Nested modules are tagged under their directory path, the way
// the Go toolchain expects multi-module repository tags.
func (m Module) Tags(version versioneer.Version) []string {
	if !m.ShouldTag {
		return nil
	}
	if m.Path == "." {
		return []string{version.String()}
	}
	return []string{m.Path + "/" + version.String()}
}

// GoModuleVersion maps a release version onto the go.mod version of the
// repository's modules. Module versions stay on the v0 line regardless of
// the release major version, so that major bumps of the coordinated product
// don't force module path suffix churn.
//
// Only rc and final versions map onto module versions: a devel placeholder
// is never pinned, rendering it would fabricate a final-looking
// pseudo-release.
func GoModuleVersion(v versioneer.Version) (string, error) {
	if v.IsDevel() {
		return "", fmt.Errorf("devel version %s has no module version", v)
	}

	s := fmt.Sprintf("v0.%d.%d", v.Minor(), v.Patch())
	if v.IsRC() {
		s += fmt.Sprintf("-rc.%d", v.RC())
	}
	return s, nil
}

// DiscoverModules walks the repository tree for go.mod files and returns
// the modules found, keyed by their root-relative directory path. Sibling
// module requirements are resolved into each module's Dependencies.
// Hidden, underscore-prefixed and vendor directories are skipped.
func DiscoverModules(root string) (map[string]Module, error) {
	modules := map[string]Module{}
	requires := map[string][]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "go.mod" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", path, err)
		}
		f, err := modfile.Parse(path, content, nil)
		if err != nil {
			return fmt.Errorf("unable to parse %s: %w", path, err)
		}
		if f.Module == nil {
			return fmt.Errorf("%s has no module directive", path)
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		modules[rel] = Module{
			Path:       rel,
			ImportPath: f.Module.Mod.Path,
			ShouldTag:  true,
		}
		for _, req := range f.Require {
			requires[rel] = append(requires[rel], req.Mod.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Resolve sibling requirements into dependencies.
	imports := map[string]bool{}
	for _, m := range modules {
		imports[m.ImportPath] = true
	}
	for rel, reqs := range requires {
		m := modules[rel]
		for _, req := range reqs {
			if imports[req] {
				m.Dependencies = append(m.Dependencies, req)
			}
		}
		sort.Strings(m.Dependencies)
		modules[rel] = m
	}

	return modules, nil
}

// TagsForVersion returns every git tag to create across the modules for the
// given release version, sorted.
func TagsForVersion(modules map[string]Module, version versioneer.Version) []string {
	var tags []string
	for _, m := range modules {
		tags = append(tags, m.Tags(version)...)
	}
	sort.Strings(tags)
	return tags
}

// UpdateDependencies pins every sibling module requirement across the tree
// to the go.mod version of the given release version, rewriting the go.mod
// files in place.
func UpdateDependencies(root string, modules map[string]Module, version versioneer.Version) error {
	moduleVersion, err := GoModuleVersion(version)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(modules))
	for path := range modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		m := modules[path]
		if len(m.Dependencies) == 0 {
			continue
		}

		goModPath := filepath.Join(root, m.Path, "go.mod")
		content, err := os.ReadFile(goModPath)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", goModPath, err)
		}
		f, err := modfile.Parse(goModPath, content, nil)
		if err != nil {
			return fmt.Errorf("unable to parse %s: %w", goModPath, err)
		}

		for _, dep := range m.Dependencies {
			if err := f.AddRequire(dep, moduleVersion); err != nil {
				return fmt.Errorf("unable to pin %s in %s: %w", dep, goModPath, err)
			}
		}

		updated, err := f.Format()
		if err != nil {
			return fmt.Errorf("unable to format %s: %w", goModPath, err)
		}
		if err := os.WriteFile(goModPath, updated, 0o644); err != nil {
			return fmt.Errorf("unable to write %s: %w", goModPath, err)
		}
	}

	return nil
}
