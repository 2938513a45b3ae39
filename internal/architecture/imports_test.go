package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)

	var violations []string
	walkImports(t, root, func(rel, imp string) {
		layer := layerFor(rel)
		if layer == "" {
			return
		}
		for _, bad := range disallowedImports(modulePath, layer) {
			if strings.HasPrefix(imp, bad) {
				violations = append(violations, fmt.Sprintf("- %s imports %q (disallowed: %q)", rel, imp, bad))
				break
			}
		}
	})
	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

// Only internal/llm may talk to provider SDKs directly.
func TestProviderSDKsStayInLLM(t *testing.T) {
	root, _ := moduleRoot(t)

	sdks := []string{
		"github.com/cloudwego/eino-ext/",
	}
	var violations []string
	walkImports(t, root, func(rel, imp string) {
		if strings.HasPrefix(rel, "internal/llm/") {
			return
		}
		for _, sdk := range sdks {
			if strings.HasPrefix(imp, sdk) {
				violations = append(violations, fmt.Sprintf("- %s imports %q", rel, imp))
			}
		}
	})
	if len(violations) > 0 {
		t.Fatalf("provider SDK imports outside internal/llm:\n%s", strings.Join(violations, "\n"))
	}
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

// walkImports calls fn for every import of every Go file under internal/.
func walkImports(t *testing.T, root string, fn func(rel, imp string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			if imp, err := strconv.Unquote(spec.Path.Value); err == nil {
				fn(filepath.ToSlash(rel), imp)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/llm/"), strings.HasPrefix(rel, "internal/render/"):
		return "engine"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/jobs/"):
		return "jobs"
	case strings.HasPrefix(rel, "internal/http/"):
		return "http"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	in := func(pkgs ...string) []string {
		out := make([]string, 0, len(pkgs))
		for _, p := range pkgs {
			out = append(out, modulePath+"/internal/"+p)
		}
		return out
	}
	switch layer {
	case "domain":
		return in("platform/", "data/", "llm", "render", "services", "jobs/", "http", "app", "cli")
	case "platform":
		return in("domain/", "data/", "llm", "render", "services", "jobs/", "http", "app", "cli")
	case "data":
		return in("llm", "render", "services", "jobs/", "http", "app", "cli")
	case "engine":
		return in("data/", "services", "jobs/", "http", "app", "cli")
	case "services":
		return in("data/", "jobs/", "http", "app", "cli")
	case "jobs":
		return in("http", "app", "cli")
	case "http":
		return in("app", "cli")
	default:
		return nil
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
