package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewSessionCreatesDirectory(t *testing.T) {
	root := t.TempDir()

	session, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected non-empty session ID")
	}
	if !strings.HasPrefix(session.Dir, root) {
		t.Fatalf("session dir %q not under root %q", session.Dir, root)
	}
	info, err := os.Stat(session.Dir)
	if err != nil {
		t.Fatalf("stat session dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected session path to be a directory")
	}
}

func TestNewSessionRejectsEmptyRoot(t *testing.T) {
	if _, err := NewSession("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestSessionsAreUnique(t *testing.T) {
	root := t.TempDir()
	first, err := NewSession(root)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	second, err := NewSession(root)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatalf("expected distinct session dirs, both %q", first.Dir)
	}
}

func TestSessionOutputPath(t *testing.T) {
	root := t.TempDir()
	session, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	got := session.OutputPath("movie.mp4")
	want := filepath.Join(session.Dir, "movie.mp4")
	if got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
}

func TestSessionExportMovesFile(t *testing.T) {
	root := t.TempDir()
	session, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	produced := session.OutputPath("movie.mp4")
	if err := os.WriteFile(produced, []byte("mixed"), 0o644); err != nil {
		t.Fatalf("write produced file: %v", err)
	}

	target := filepath.Join(t.TempDir(), "out", "movie.mp4")
	if err := session.Export(produced, target); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "mixed" {
		t.Fatalf("unexpected target contents: %q", data)
	}
	if _, err := os.Stat(produced); !os.IsNotExist(err) {
		t.Error("expected produced file to be moved out of the session")
	}
}

func TestSessionExportMissingSource(t *testing.T) {
	root := t.TempDir()
	session, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	err = session.Export(session.OutputPath("nope.mp4"), filepath.Join(t.TempDir(), "out.mp4"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSessionClose(t *testing.T) {
	root := t.TempDir()
	session, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := os.WriteFile(session.OutputPath("scratch.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(session.Dir); !os.IsNotExist(err) {
		t.Error("expected session dir to be removed")
	}

	var nilSession *Session
	if err := nilSession.Close(); err != nil {
		t.Fatalf("nil Close should be a no-op, got %v", err)
	}
}
