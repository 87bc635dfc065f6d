package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/platform/config"
	dErrors "docverify/pkg/domain-errors"
)

func TestValidateUpload(t *testing.T) {
	policy := NewUploadPolicy(config.Default().Upload)

	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{"pdf accepted", "contract.pdf", 1024, false},
		{"upper case extension accepted", "CONTRACT.PDF", 1024, false},
		{"docx accepted", "lease.docx", 1, false},
		{"txt accepted", "notes.txt", 10, false},
		{"doc accepted", "old.doc", 10, false},
		{"rtf accepted", "memo.rtf", 10, false},
		{"exactly max size accepted", "big.pdf", 10 * 1024 * 1024, false},
		{"one byte over max rejected", "big.pdf", 10*1024*1024 + 1, true},
		{"image rejected", "scan.png", 10, true},
		{"no extension rejected", "README", 10, true},
		{"empty file rejected", "empty.pdf", 0, true},
		{"blank name rejected", "  ", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.ValidateUpload(tt.file, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateUploadMessages(t *testing.T) {
	policy := NewUploadPolicy(config.Upload{MaxFileSize: 10 * 1024 * 1024, AllowedExtensions: []string{"PDF", ".txt"}})

	err := policy.ValidateUpload("a.exe", 10)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "File type not supported. Please upload .pdf, .txt files only.", de.Message)

	err = policy.ValidateUpload("a.pdf", 20*1024*1024)
	de, ok = dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "File size too large. Please upload files smaller than 10MB.", de.Message)
}

func TestParseDocumentType(t *testing.T) {
	for _, info := range Types() {
		got, err := ParseDocumentType(string(info.ID))
		require.NoError(t, err)
		assert.Equal(t, info.ID, got)
	}

	got, err := ParseDocumentType(" NDA ")
	require.NoError(t, err)
	assert.Equal(t, TypeNDA, got)

	_, err = ParseDocumentType("mortgage")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
