// Package session owns the on-disk layout of one timelapse run: a uniquely
// named directory under the output root, sequentially numbered frame files
// and the rendered video next to them.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// FallbackName is used when sanitizing leaves nothing of the user's input.
const FallbackName = "session"

const framePrefix = "seq_"

var invalidChars = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// Sanitize maps arbitrary input to a filesystem-safe identifier: trims
// whitespace, turns spaces into underscores and strips everything outside
// [A-Za-z0-9_-].
func Sanitize(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = invalidChars.ReplaceAllString(name, "")
	if name == "" {
		return FallbackName
	}
	return name
}

// Session is one run's output directory. It is exclusively owned by a
// single process; no concurrent-session races are handled.
type Session struct {
	// Name is the sanitized session name, without any -NNN suffix the
	// directory may have picked up.
	Name string
	// Dir is the allocated directory. It did not exist before Allocate.
	Dir string
}

// Allocate creates root/<sanitized name>; if that exists it probes -001,
// -002, ... until an unused path is found and creates exactly one new
// directory.
func Allocate(root, rawName string) (*Session, error) {
	name := Sanitize(rawName)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "create output root %s", root)
	}

	base := filepath.Join(root, name)
	dir := base
	for i := 1; ; i++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "probe %s", dir)
		}
		dir = fmt.Sprintf("%s-%03d", base, i)
	}

	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create session dir %s", dir)
	}
	return &Session{Name: name, Dir: dir}, nil
}

// FramePath returns the zero-padded path of frame index i.
func (s *Session) FramePath(i int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s%05d.jpg", framePrefix, i))
}

// FramePattern is the ffmpeg input pattern matching all frame files.
func (s *Session) FramePattern() string {
	return filepath.Join(s.Dir, framePrefix+"%05d.jpg")
}

// VideoPath is where the rendered timelapse lands.
func (s *Session) VideoPath() string {
	return filepath.Join(s.Dir, s.Name+".mp4")
}

// CleanupFrames deletes all sequentially named frame files and reports how
// many were removed. Files that refuse to go are skipped.
func (s *Session) CleanupFrames() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, errors.Wrapf(err, "read session dir %s", s.Dir)
	}
	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if !strings.HasPrefix(n, framePrefix) || !strings.HasSuffix(n, ".jpg") {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, n)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}
