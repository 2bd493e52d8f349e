package bootconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pumped-fn/kernel/component"
	"github.com/pumped-fn/kernel/pkg/schema"
)

func writeYAMLFixture(t *testing.T, contents map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(contents)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMergesDefaultsAndFile(t *testing.T) {
	path := writeYAMLFixture(t, map[string]any{"port": 9090})

	cfg, err := Load(Source{FilePath: path, Defaults: map[string]any{"port": 8080, "host": "localhost"}}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg["port"] != 9090 {
		t.Fatalf("port = %v, want the file's override of 9090", cfg["port"])
	}
	if cfg["host"] != "localhost" {
		t.Fatalf("host = %v, want the default since nothing overrode it", cfg["host"])
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(Source{FilePath: filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	if err == nil {
		t.Fatalf("expected an error reading a missing config file")
	}
}

func TestLoadValidatesAgainstSchema(t *testing.T) {
	path := writeYAMLFixture(t, map[string]any{"port": "not-a-number"})

	objectSchema := schema.Object(map[string]schema.Schema{
		"port": schema.Number(),
	})

	_, err := Load(Source{FilePath: path}, objectSchema)
	if err == nil {
		t.Fatalf("expected schema validation to reject a non-numeric port")
	}
}

func TestBootBindsConfigsSlot(t *testing.T) {
	path := writeYAMLFixture(t, map[string]any{"port": 9090})

	got, err := Boot(context.Background(), Source{FilePath: path}, nil, func(ctx context.Context) (int, error) {
		cfg, ok := component.Get(ctx, component.Configs)
		if !ok {
			t.Fatalf("expected the Configs slot to be bound inside Boot's callback")
		}
		port, _ := cfg["port"].(int)
		return port, nil
	})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if got != 9090 {
		t.Fatalf("got = %d, want 9090", got)
	}
}
