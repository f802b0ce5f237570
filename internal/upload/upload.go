// Package upload stores applicant resumes on local disk or in Google Cloud Storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is the public path stored files are served under.
const URLPrefix = "/uploads/"

const resumeObjectPrefix = "resumes"

var (
	// ErrUnsupportedExtension is returned for anything but .pdf, .doc and .docx.
	ErrUnsupportedExtension = errors.New("Only .pdf, .doc and .docx files are allowed")
	// ErrContentMismatch is returned when the file content does not match its extension.
	ErrContentMismatch = errors.New("File content does not match its extension")
	// ErrInvalidObjectName is returned for names that were not produced by NewResumeObjectName.
	ErrInvalidObjectName = errors.New("Invalid file name")
	// ErrNotFound is returned by Open for unknown objects.
	ErrNotFound = errors.New("File not found")
)

// allowed MIME types per extension; a detected type or any of its parents must match
var resumeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

var objectNamePattern = regexp.MustCompile(`^resumes/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(pdf|doc|docx)$`)

// ResumeStore persists uploaded resumes.
type ResumeStore interface {
	// Save writes data under objectName and returns its public path.
	Save(ctx context.Context, objectName, contentType string, data io.Reader) (string, error)
	// Open returns the stored object and its size.
	Open(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
}

// ValidateResume checks the extension of filename and sniffs content against it.
// It returns the lower-cased extension and the detected content type.
func ValidateResume(filename string, content []byte) (string, string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	allowed, ok := resumeTypes[extension]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, extension)
	}

	detected := mimetype.Detect(content)
	for m := detected; m != nil; m = m.Parent() {
		if mimetype.EqualsAny(m.String(), allowed...) {
			return extension, detected.String(), nil
		}
	}
	return "", "", fmt.Errorf("%w: detected %s", ErrContentMismatch, detected.String())
}

// NewResumeObjectName returns a fresh uuid based object name for extension.
func NewResumeObjectName(extension string) string {
	return fmt.Sprintf("%s/%s%s", resumeObjectPrefix, uuid.NewString(), extension)
}

// ValidObjectName reports whether name could have come from NewResumeObjectName.
func ValidObjectName(name string) bool {
	return objectNamePattern.MatchString(name)
}

// PublicPath returns the path a stored object is served under.
func PublicPath(objectName string) string {
	return URLPrefix + objectName
}
