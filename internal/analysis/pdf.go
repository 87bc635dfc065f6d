package analysis

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// IsPDF reports whether doc looks like a PDF by content type or extension.
func IsPDF(doc Document) bool {
	if strings.EqualFold(doc.ContentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.Name), ".pdf")
}

// PageCount reads the page count of an in-memory PDF. Validation is relaxed so
// slightly malformed files from office exporters still parse.
func PageCount(content []byte) (int, error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("empty pdf")
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return n, nil
}
