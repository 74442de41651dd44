package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/manifest/pkgtest"
)

// setupHome points every plugmgr path at a fresh temporary home and returns
// a directory for staging packages outside of it.
func setupHome(t *testing.T) (home, incoming string) {
	t.Helper()
	root := t.TempDir()
	home = filepath.Join(root, "home")
	incoming = filepath.Join(root, "incoming")
	if err := os.MkdirAll(incoming, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLUGMGR_HOME", home)
	t.Setenv("PLUGMGR_PACKAGES", "")
	t.Setenv("PLUGMGR_DATA", "")
	return home, incoming
}

// runCLI executes the root command with args and returns everything it
// printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	verbose, metricsTextfile = false, ""
	listJSON, listState, depsTree = false, "all", false
	versionShort, versionJSON = false, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writePkg(t *testing.T, dir, name string, depend ...string) string {
	t.Helper()
	return pkgtest.Component(t, dir, manifest.Descriptor{Name: name, Version: "1.0.0", Depend: depend})
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestList_OnlySelf(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	mustContain(t, out, "Components (1/1 enabled):", "plugmgr")
}

func TestList_StateFilter(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "list", "--state", "disabled")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	mustContain(t, out, "Components (1/1 enabled):")
	if strings.Contains(out, "plugmgr ") {
		t.Errorf("enabled host component shown under --state disabled:\n%s", out)
	}

	if _, err := runCLI(t, "list", "--state", "off"); err == nil {
		t.Error("expected error for unknown --state")
	}
}

func TestLifecycleFlow(t *testing.T) {
	home, incoming := setupHome(t)
	lib := writePkg(t, incoming, "Lib")
	addon := writePkg(t, incoming, "Addon", "Lib")

	out, err := runCLI(t, "load", addon, lib)
	if err != nil {
		t.Fatalf("load failed: %v\n%s", err, out)
	}
	mustContain(t, out, "Installed Lib", "Installed Addon")
	if strings.Index(out, "Installed Lib") > strings.Index(out, "Installed Addon") {
		t.Errorf("Lib must be installed before Addon:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, "packages", "Addon.zip")); err != nil {
		t.Errorf("package not copied into packages dir: %v", err)
	}

	out, err = runCLI(t, "disable", "lib")
	if !errors.Is(err, errReported) {
		t.Fatalf("disable with active dependent: err = %v", err)
	}
	mustContain(t, out, "Cannot disable Lib: required by Addon.")

	out, err = runCLI(t, "deps", "Lib")
	if err != nil {
		t.Fatalf("deps failed: %v", err)
	}
	mustContain(t, out, "Dependents:   Addon", "Depends:      None")

	out, err = runCLI(t, "reload", "Lib")
	if err != nil {
		t.Fatalf("reload failed: %v\n%s", err, out)
	}
	mustContain(t, out, "Reloaded Lib and its dependents (Addon).")

	out, err = runCLI(t, "disable", "Addon")
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	mustContain(t, out, "Disabled Addon.")

	out, _ = runCLI(t, "list")
	mustContain(t, out, "Components (2/3 enabled):")

	out, _ = runCLI(t, "disable", "Addon")
	mustContain(t, out, "Addon is already disabled.")

	out, err = runCLI(t, "enable", "addon")
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	mustContain(t, out, "Enabled Addon.")
}

func TestDisableSelf(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "disable", "plugmgr")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	mustContain(t, out, "plugmgr cannot disable itself.")
}

func TestLoad_MissingDependency(t *testing.T) {
	home, incoming := setupHome(t)
	addon := writePkg(t, incoming, "Addon", "Missing")

	out, err := runCLI(t, "load", addon)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	mustContain(t, out, "missing dependencies Missing")

	out, _ = runCLI(t, "list")
	mustContain(t, out, "Components (1/1 enabled):")

	out, err = runCLI(t, "info", "Addon")
	if err == nil {
		t.Errorf("Addon visible after a blocked load:\n%s", out)
	}
	entries, err := os.ReadDir(filepath.Join(home, "packages"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("packages directory not empty after blocked load: %v", entries)
	}
}

func TestLoad_LocalDisabled(t *testing.T) {
	_, incoming := setupHome(t)
	addon := writePkg(t, incoming, "Addon")
	t.Setenv("PLUGMGR_LOAD_ALLOW_LOCAL", "false")

	out, err := runCLI(t, "load", addon)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	mustContain(t, out, "loading from local files is disabled")
}

func TestEnable_NotFoundSuggests(t *testing.T) {
	_, incoming := setupHome(t)
	if _, err := runCLI(t, "load", writePkg(t, incoming, "Economy")); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err := runCLI(t, "enable", "Econmy")
	if err != nil {
		t.Fatalf("enable of unknown component is a no-op, got %v", err)
	}
	mustContain(t, out, "Component Econmy not found.", "Did you mean Economy?")

	_, err = runCLI(t, "info", "Econmy")
	if err == nil || !strings.Contains(err.Error(), "did you mean Economy") {
		t.Errorf("info error = %v, want suggestion", err)
	}
}

func TestInfoAndFiles(t *testing.T) {
	_, incoming := setupHome(t)
	if _, err := runCLI(t, "load", writePkg(t, incoming, "Addon")); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err := runCLI(t, "info", "Addon")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	mustContain(t, out,
		"Component: Addon",
		"Version:     1.0.0",
		"Authors:     Unknown",
		"Description: No description available",
		"Status:      Enabled",
	)

	out, err = runCLI(t, "files", "Addon")
	if err != nil {
		t.Fatalf("files failed: %v", err)
	}
	mustContain(t, out, "Addon.zip", "(not created)")
}

func TestConfigCommands(t *testing.T) {
	setupHome(t)

	if _, err := runCLI(t, "config", "set", "smart-reload", "false"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	out, err := runCLI(t, "config", "get", "smart-reload")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(out) != "false" {
		t.Errorf("smart-reload = %q, want false", out)
	}

	out, _ = runCLI(t, "config", "list")
	mustContain(t, out, "reserved-components", "host,runtime,platform,core")

	_, err = runCLI(t, "config", "get", "smart-reloda")
	if err == nil || !strings.Contains(err.Error(), "did you mean smart-reload") {
		t.Errorf("unknown key error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	build = BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"}
	out, err := runCLI(t, "version", "--short")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}
}

func TestMetricsTextfile(t *testing.T) {
	home, _ := setupHome(t)
	path := filepath.Join(home, "metrics.prom")

	if _, err := runCLI(t, "--metrics-textfile", path, "list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(data), "plugmgr_loader_load_duration_seconds") {
		t.Errorf("metrics file missing histogram:\n%s", data)
	}
}

func TestListeners(t *testing.T) {
	_, incoming := setupHome(t)
	pkg := pkgtest.Component(t, incoming, manifest.Descriptor{
		Name:      "Shop",
		Version:   "1.0.0",
		Listeners: []string{"shop.JoinListener", "shop.QuitListener"},
	})
	for _, src := range []string{pkg, writePkg(t, incoming, "Quiet")} {
		if _, err := runCLI(t, "load", src); err != nil {
			t.Fatalf("load %s failed: %v", src, err)
		}
	}

	out, err := runCLI(t, "listeners", "shop")
	if err != nil {
		t.Fatalf("listeners failed: %v", err)
	}
	mustContain(t, out, "Listeners for Shop", "shop.JoinListener", "shop.QuitListener")

	out, err = runCLI(t, "listeners", "Quiet")
	if err != nil {
		t.Fatalf("listeners failed: %v", err)
	}
	mustContain(t, out, "Listeners for Quiet", "None")
}

func TestConfigSet_RejectsTypo(t *testing.T) {
	_, incoming := setupHome(t)
	lib := writePkg(t, incoming, "Lib")
	addon := writePkg(t, incoming, "Addon", "Lib")
	if _, err := runCLI(t, "load", addon, lib); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	_, err := runCLI(t, "config", "set", "block-disable-with-dependents", "ture")
	if err == nil || !strings.Contains(err.Error(), "want true or false") {
		t.Fatalf("config set with typo: err = %v", err)
	}

	out, err := runCLI(t, "disable", "Lib")
	if !errors.Is(err, errReported) {
		t.Fatalf("disable with active dependent: err = %v", err)
	}
	mustContain(t, out, "Cannot disable Lib: required by Addon.")
}

func TestBrokenConfigFile(t *testing.T) {
	home, _ := setupHome(t)
	if err := os.MkdirAll(home, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(home, "config.yaml")

	if err := os.WriteFile(path, []byte("smart-reload: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "list"); err == nil || !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("list with malformed config: err = %v", err)
	}

	// An ill-typed value blocks ordinary commands but not its own repair.
	if err := os.WriteFile(path, []byte("smart-reload: nope\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "list"); err == nil {
		t.Error("list with ill-typed config value succeeded")
	}
	if _, err := runCLI(t, "config", "set", "smart-reload", "true"); err != nil {
		t.Fatalf("config set to repair value: %v", err)
	}
	if _, err := runCLI(t, "list"); err != nil {
		t.Errorf("list after repair: %v", err)
	}
}
