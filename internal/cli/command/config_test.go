package command

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/cli/config"
)

func TestConfigPath(t *testing.T) {
	h := newHarness(t)

	res := h.mustRun("", "config", "path")
	if got := strings.TrimSpace(res.Stdout); got != config.DefaultConfigPath() {
		t.Errorf("path = %q, want %q", got, config.DefaultConfigPath())
	}

	custom := filepath.Join(t.TempDir(), "alt.yaml")
	res = h.mustRun("", "--config", custom, "config", "path")
	if got := strings.TrimSpace(res.Stdout); got != custom {
		t.Errorf("path = %q, want %q", got, custom)
	}
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "cli.yaml")

	h.mustRun("", "--config", path, "config", "init")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	if res := h.run("", "--config", path, "config", "init"); res.Err == nil {
		t.Error("second init without --force succeeded")
	}
	h.mustRun("", "--config", path, "config", "init", "--force")
}

func TestConfigSetAndShow(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "cli.yaml")

	h.mustRun("", "--config", path, "config", "set", "list.page_size", "25")
	h.mustRun("", "--config", path, "config", "set", "session.encrypt", "true")

	res := h.mustRun("", "--config", path, "-o", "json", "config", "show")
	var doc map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, res.Stdout)
	}
	section := func(name string) map[string]any {
		m, _ := doc[name].(map[string]any)
		return m
	}
	if got := section("list")["page_size"]; got != 25.0 {
		t.Errorf("list.page_size = %v, want 25", got)
	}
	if got := section("session")["encrypt"]; got != true {
		t.Errorf("session.encrypt = %v, want true", got)
	}
	if got := section("api")["base_url"]; got != h.api.URL {
		t.Errorf("api.base_url = %v, want the --server value", got)
	}
}

func TestConfigSet_Rejects(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "cli.yaml")

	tests := [][]string{
		{"config", "set", "no.such.key", "1"},
		{"config", "set", "session.backend", "floppy"},
		{"config", "set", "output"},
	}
	for _, args := range tests {
		if res := h.run("", append([]string{"--config", path}, args...)...); res.Err == nil {
			t.Errorf("%v succeeded", args)
		}
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("rejected set wrote the file")
	}
}

func TestConfigShow_Table(t *testing.T) {
	h := newHarness(t)

	res := h.mustRun("", "config", "show")
	if !strings.Contains(res.Stdout, "session.backend") || !strings.Contains(res.Stdout, "file") {
		t.Errorf("stdout:\n%s", res.Stdout)
	}
}

func TestConfig_ExplicitFileMustExist(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "whoami")
	if res.Err == nil {
		t.Error("missing explicit config accepted")
	}
}
