package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/patrickprogramme/scriptratio/internal/assets"
)

func TestEnsureConfigPresent(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "conf", "scriptratio.yaml")

	created, err := EnsureConfigPresent(dst, assets.Embedded, assets.DefaultConfigAsset)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	want, _ := assets.Embedded.ReadFile(assets.DefaultConfigAsset)
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != string(want) {
		t.Fatalf("written config differs (err %v)", err)
	}

	// un fichier existant n'est jamais remplacé
	if err := os.WriteFile(dst, []byte("custom: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = EnsureConfigPresent(dst, assets.Embedded, assets.DefaultConfigAsset)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "custom: true\n" {
		t.Errorf("existing config overwritten: %q", got)
	}
}

func TestEnsureConfigPresent_MissingAsset(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "scriptratio.yaml")
	if _, err := EnsureConfigPresent(dst, fstest.MapFS{}, "absent.yaml"); err == nil {
		t.Fatal("expected error for missing asset")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("no file should be written, stat err = %v", err)
	}
}
