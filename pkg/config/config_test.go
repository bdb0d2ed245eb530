package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakachi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
system_dict: /data/system.dic
user_dicts:
  - /data/user1.dic
  - /data/user2.dic
mode: A
cache_size: 256
normalize: true
lowercase: true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SystemDict != "/data/system.dic" {
		t.Errorf("SystemDict = %q", c.SystemDict)
	}
	if len(c.UserDicts) != 2 || c.UserDicts[1] != "/data/user2.dic" {
		t.Errorf("UserDicts = %v", c.UserDicts)
	}
	if c.Mode != "A" || c.CacheSize != 256 || !c.Normalize || !c.Lowercase {
		t.Errorf("unexpected config: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mode != "C" || c.CacheSize != -1 {
		t.Errorf("defaults = %+v", c)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WAKACHI_SYSTEM_DICT", "/env/system.dic")
	t.Setenv("WAKACHI_MODE", "B")
	t.Setenv("WAKACHI_CACHE_SIZE", "0")
	t.Setenv("WAKACHI_NORMALIZE", "true")

	path := writeConfig(t, "system_dict: /file/system.dic\nmode: A\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SystemDict != "/env/system.dic" || c.Mode != "B" || c.CacheSize != 0 || !c.Normalize {
		t.Errorf("environment did not win: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must fail")
	}
	if _, err := Load(writeConfig(t, "system_dict: [unclosed")); err == nil {
		t.Error("malformed yaml must fail")
	}
	t.Setenv("WAKACHI_CACHE_SIZE", "many")
	if _, err := Load(""); err == nil {
		t.Error("non-numeric cache size must fail")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err == nil {
		t.Error("missing system_dict must fail validation")
	}
	c.SystemDict = "/data/system.dic"
	c.Mode = "Z"
	if err := c.Validate(); err == nil {
		t.Error("unknown mode must fail validation")
	}
	c.Mode = "b"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
