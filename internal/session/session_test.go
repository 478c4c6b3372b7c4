package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Print #1", "My_Print_1"},
		{"  padded  ", "padded"},
		{"fine_name-01", "fine_name-01"},
		{"sla/..\\evil", "slaevil"},
		{"", "session"},
		{"###!!!", "session"},
		{"белая башня", "_"},
		{"печать", "session"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllocateSequence(t *testing.T) {
	root := t.TempDir()

	want := []string{"print", "print-001", "print-002", "print-003"}
	for i, w := range want {
		s, err := Allocate(root, "print")
		if err != nil {
			t.Fatalf("Allocate #%d failed: %v", i, err)
		}
		if filepath.Base(s.Dir) != w {
			t.Errorf("allocation #%d: expected dir %q, got %q", i, w, filepath.Base(s.Dir))
		}
		if s.Name != "print" {
			t.Errorf("allocation #%d: Name should stay %q, got %q", i, "print", s.Name)
		}
		if fi, err := os.Stat(s.Dir); err != nil || !fi.IsDir() {
			t.Errorf("allocation #%d: dir %s not created", i, s.Dir)
		}
	}
}

func TestAllocateSanitizesName(t *testing.T) {
	root := t.TempDir()
	s, err := Allocate(root, "My Print #1")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if filepath.Base(s.Dir) != "My_Print_1" {
		t.Errorf("expected sanitized dir, got %s", s.Dir)
	}
}

func TestFramePaths(t *testing.T) {
	s := &Session{Name: "x", Dir: "/tmp/x"}

	if got := filepath.Base(s.FramePath(42)); got != "seq_00042.jpg" {
		t.Errorf("FramePath(42) = %q", got)
	}
	if got := filepath.Base(s.FramePath(0)); got != "seq_00000.jpg" {
		t.Errorf("FramePath(0) = %q", got)
	}
	if got := filepath.Base(s.FramePattern()); got != "seq_%05d.jpg" {
		t.Errorf("FramePattern = %q", got)
	}
	if got := filepath.Base(s.VideoPath()); got != "x.mp4" {
		t.Errorf("VideoPath = %q", got)
	}
}

func TestVideoPathKeepsNameAfterSuffix(t *testing.T) {
	root := t.TempDir()
	if _, err := Allocate(root, "print"); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	s, err := Allocate(root, "print")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	// The directory picked up -001 but the video keeps the session name.
	if filepath.Base(s.Dir) != "print-001" {
		t.Fatalf("expected suffixed dir, got %s", s.Dir)
	}
	if filepath.Base(s.VideoPath()) != "print.mp4" {
		t.Errorf("VideoPath = %q, want print.mp4", s.VideoPath())
	}
}

func TestCleanupFrames(t *testing.T) {
	root := t.TempDir()
	s, err := Allocate(root, "clean")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(s.FramePath(i), []byte("jpg"), 0644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	keepers := []string{s.VideoPath(), filepath.Join(s.Dir, "info.png"), filepath.Join(s.Dir, "notes.txt")}
	for _, k := range keepers {
		if err := os.WriteFile(k, []byte("keep"), 0644); err != nil {
			t.Fatalf("write keeper: %v", err)
		}
	}

	deleted, err := s.CleanupFrames()
	if err != nil {
		t.Fatalf("CleanupFrames failed: %v", err)
	}
	if deleted != 5 {
		t.Errorf("expected 5 deleted frames, got %d", deleted)
	}

	for i := 0; i < 5; i++ {
		if _, err := os.Stat(s.FramePath(i)); !os.IsNotExist(err) {
			t.Errorf("frame %d survived cleanup", i)
		}
	}
	for _, k := range keepers {
		if _, err := os.Stat(k); err != nil {
			t.Errorf("%s should survive cleanup: %v", filepath.Base(k), err)
		}
	}
}

func TestWriteInfoCard(t *testing.T) {
	root := t.TempDir()
	s, err := Allocate(root, "card")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	err = s.WriteInfoCard(CardMeta{
		Session:     s.Name,
		TotalLayers: 5000,
		Frames:      289,
		IntervalSec: 12.45,
		Video:       s.VideoPath(),
	})
	if err != nil {
		t.Fatalf("WriteInfoCard failed: %v", err)
	}

	fi, err := os.Stat(filepath.Join(s.Dir, "info.png"))
	if err != nil {
		t.Fatalf("info.png missing: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("info.png is empty")
	}
}

func TestCleanupIgnoresSubdirs(t *testing.T) {
	root := t.TempDir()
	s, err := Allocate(root, "subdir")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir, fmt.Sprintf("%sbackup.jpg", "seq_")), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	deleted, err := s.CleanupFrames()
	if err != nil {
		t.Fatalf("CleanupFrames failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deletions, got %d", deleted)
	}
}
