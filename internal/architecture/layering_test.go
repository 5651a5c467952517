package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesImport = "courseplay/internal/modules/"

// imports walks root and calls fn with every module-internal import of every
// non-test Go file.
func imports(t *testing.T, root string, fn func(file, importPath string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if strings.Contains(importPath, modulesImport) {
				fn(filepath.ToSlash(path), importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	imports(t, filepath.Join("..", "modules"), func(file, importPath string) {
		module := moduleName(file)
		layer := detectLayer(file)
		if module == "" || layer == "" {
			return
		}
		if violatesLayerRule(module, layer, importPath) {
			t.Fatalf("forbidden import in %s (%s): %s", file, layer, importPath)
		}
	})
}

// The state machine stays free of other modules so it can be tested without
// any course, progress or surface code.
func TestPlaybackDomainIsSelfContained(t *testing.T) {
	t.Parallel()
	imports(t, filepath.Join("..", "modules", "playback", "domain"), func(file, importPath string) {
		t.Fatalf("%s imports %s", file, importPath)
	})
}

// The terminal UI only sees what the playback handlers return.
func TestUIImportsOnlyDTOs(t *testing.T) {
	t.Parallel()
	imports(t, filepath.Join("..", "ui"), func(file, importPath string) {
		if !isDTO(importPath) {
			t.Fatalf("%s imports %s", file, importPath)
		}
	})
}

func TestEveryModuleHasAllLayers(t *testing.T) {
	t.Parallel()
	for _, module := range []string{"course", "progress", "playback", "surface"} {
		for _, layer := range []string{"domain", "dto", "port/in", "port/out", "service", "usecase", "adapter/in", "adapter/out"} {
			dir := filepath.Join("..", "modules", module, filepath.FromSlash(layer))
			if _, err := os.Stat(dir); err != nil {
				t.Fatalf("module %s is missing layer %s: %v", module, layer, err)
			}
		}
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.Contains(importPath, modulesImport+module+"/") {
		// Across modules only the inbound contract is visible, and only to
		// outbound adapters, which bridge one module's port to another's usecase.
		if !isPortIn(importPath) && !isDTO(importPath) {
			return true
		}
		return layer != "adapter/out"
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	case "port/in", "dto":
		return !isDTO(importPath) && !strings.HasSuffix(importPath, "/domain")
	default:
		return false
	}
}
