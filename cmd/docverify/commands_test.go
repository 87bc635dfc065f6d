package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/analysis"
	"docverify/internal/analysis/models"
	"docverify/internal/documents"
	documentStore "docverify/internal/documents/store"
	"docverify/internal/mockapi"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	policy := documents.UploadPolicy{MaxSize: 1 << 20, Extensions: []string{".pdf", ".txt"}}
	mockapi.New(analysis.NewMock(), documentStore.NewInMemoryDocumentStore(), policy, slog.New(slog.DiscardHandler)).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	srv := newBackend(t)
	path := writeFile(t, "sample_contract.txt", "Both parties agree.")

	out, err := execute(t, "--base-url", srv.URL, "verify", path, "--type", "contract")
	require.NoError(t, err)

	var res models.VerificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, models.RiskMedium, res.RiskLevel)
}

func TestSummarizeTextOutput(t *testing.T) {
	srv := newBackend(t)
	path := writeFile(t, "lease.txt", "Rent is due monthly.")

	out, err := execute(t, "--base-url", srv.URL, "-o", "text", "summarize", path)
	require.NoError(t, err)
	assert.Contains(t, out, "lease.txt")
	assert.Contains(t, out, "Key points:")
}

func TestChatWithHistory(t *testing.T) {
	srv := newBackend(t)
	path := writeFile(t, "nda.txt", "Confidential.")
	history := writeFile(t, "history.json", `[{"role":"user","message":"hi"},{"role":"ai","message":"hello"}]`)

	out, err := execute(t, "--base-url", srv.URL, "-o", "text", "chat", path, "Is this binding?", "--history", history)
	require.NoError(t, err)
	assert.Contains(t, out, "legally valid and binding")
}

func TestValidationHappensBeforeAnyRequest(t *testing.T) {
	// The base URL is unroutable; a request would fail with a transport error instead.
	path := writeFile(t, "photo.png", "png")
	_, err := execute(t, "--base-url", "http://127.0.0.1:1", "--retries", "0", "verify", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File type not supported")

	txt := writeFile(t, "contract.txt", "x")
	_, err = execute(t, "--base-url", "http://127.0.0.1:1", "verify", txt, "--type", "passport")
	require.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "-o", "yaml", "types")
	require.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	srv := newBackend(t)
	out, err := execute(t, "--base-url", srv.URL, "-o", "text", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
}
