package media

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the type of upload an exercise expects.
type Kind int

const (
	Image Kind = iota
	Audio
)

func (k Kind) String() string {
	if k == Audio {
		return "audio"
	}
	return "image"
}

// audioExtensions covers recorder formats the system mime table may lack.
var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// ErrMissing is returned when no file was provided.
var ErrMissing = errors.New("no file selected")

// ValidationError describes an upload rejected before any request is sent.
type ValidationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", filepath.Base(e.Path), e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// File is a validated upload held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Load reads and validates the file at path for an upload of kind, rejecting
// empty files, files larger than maxBytes and files of the wrong type.
func Load(path string, kind Kind, maxBytes int64) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, &ValidationError{Reason: fmt.Sprintf("please choose an %s file", kind), Err: ErrMissing}
	}

	info, err := os.Stat(path)
	if err != nil {
		return File{}, &ValidationError{Path: path, Reason: "file not found", Err: err}
	}
	if info.IsDir() {
		return File{}, &ValidationError{Path: path, Reason: "is a directory"}
	}
	if info.Size() == 0 {
		return File{}, &ValidationError{Path: path, Reason: "file is empty"}
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return File{}, &ValidationError{
			Path:   path,
			Reason: fmt.Sprintf("file is %s, the limit is %s", humanSize(info.Size()), humanSize(maxBytes)),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &ValidationError{Path: path, Reason: "cannot read file", Err: err}
	}

	ct := DetectType(path, data)
	if !Accepts(kind, ct) {
		return File{}, &ValidationError{Path: path, Reason: fmt.Sprintf("expected an %s file, got %s", kind, ct)}
	}

	return File{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// DetectType sniffs the content type, falling back to the file extension when
// sniffing is inconclusive.
func DetectType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	if ct != "application/octet-stream" && !strings.HasPrefix(ct, "text/plain") {
		return stripParams(ct)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if byExt, ok := audioExtensions[ext]; ok {
		return byExt
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return stripParams(byExt)
	}
	return stripParams(ct)
}

// Accepts reports whether content type ct is valid for kind.
func Accepts(kind Kind, ct string) bool {
	switch kind {
	case Image:
		return strings.HasPrefix(ct, "image/")
	case Audio:
		return strings.HasPrefix(ct, "audio/") || ct == "application/ogg" || ct == "video/webm"
	}
	return false
}

func stripParams(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		return strings.TrimSpace(ct[:i])
	}
	return ct
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
