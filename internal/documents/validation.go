package documents

import (
	"fmt"
	"path/filepath"
	"strings"

	"docverify/internal/platform/config"
	dErrors "docverify/pkg/domain-errors"
)

// UploadPolicy bounds what may be uploaded. Checks run before any network call.
type UploadPolicy struct {
	MaxSize    int64
	Extensions []string
}

// NewUploadPolicy normalizes extensions to lower case with a leading dot.
func NewUploadPolicy(cfg config.Upload) UploadPolicy {
	exts := make([]string, 0, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return UploadPolicy{MaxSize: cfg.MaxFileSize, Extensions: exts}
}

// Accepts reports whether name has an accepted extension.
func (p UploadPolicy) Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ValidateUpload checks the file name and size.
func (p UploadPolicy) ValidateUpload(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if !p.Accepts(name) {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("File type not supported. Please upload %s files only.", strings.Join(p.Extensions, ", ")))
	}
	if size <= 0 {
		return dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	if size > p.MaxSize {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("File size too large. Please upload files smaller than %s.", humanSize(p.MaxSize)))
	}
	return nil
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
