package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"docverify/internal/analysis"
	"docverify/internal/analysis/models"
	"docverify/internal/apiclient"
	"docverify/internal/documents"
	"docverify/internal/documents/store"
)

type MockAPISuite struct {
	suite.Suite
	docs   *store.InMemoryDocumentStore
	server *httptest.Server
}

func TestMockAPISuite(t *testing.T) {
	suite.Run(t, new(MockAPISuite))
}

func (s *MockAPISuite) SetupTest() {
	s.docs = store.NewInMemoryDocumentStore()
	policy := documents.UploadPolicy{MaxSize: 1024, Extensions: []string{".pdf", ".txt"}}
	mock := analysis.NewMock(analysis.WithRand(rand.New(rand.NewPCG(1, 2))))

	r := chi.NewRouter()
	New(mock, s.docs, policy, slog.New(slog.DiscardHandler)).Register(r)
	s.server = httptest.NewServer(r)
	s.T().Cleanup(s.server.Close)
}

func (s *MockAPISuite) upload(field, name string, content []byte) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	resp, err := http.Post(s.server.URL+apiclient.EndpointUpload, mw.FormDataContentType(), &buf)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *MockAPISuite) postJSON(endpoint, body string) *http.Response {
	resp, err := http.Post(s.server.URL+endpoint, "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func detail(t *testing.T, resp *http.Response) string {
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["detail"]
}

func (s *MockAPISuite) TestUpload() {
	s.Run("stores the file and returns its id", func() {
		resp := s.upload("file", "lease.txt", []byte("tenant agrees"))
		s.Equal(http.StatusOK, resp.StatusCode)

		var res models.UploadResult
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&res))
		s.Equal("lease.txt", res.Filename)
		s.Equal(int64(len("tenant agrees")), res.Size)

		id, err := uuid.Parse(res.FileID)
		s.Require().NoError(err)
		doc, err := s.docs.FindByID(context.Background(), id)
		s.Require().NoError(err)
		s.Equal([]byte("tenant agrees"), doc.Content)
	})

	s.Run("missing file", func() {
		resp := s.upload("attachment", "lease.txt", []byte("x"))
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.Equal("No file provided", detail(s.T(), resp))
	})

	s.Run("file part without a name", func() {
		resp := s.upload("file", "", []byte("x"))
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.Equal("No file provided", detail(s.T(), resp))
	})

	s.Run("unsupported extension", func() {
		resp := s.upload("file", "photo.png", []byte("x"))
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.Contains(detail(s.T(), resp), "File type not supported")
	})
}

func (s *MockAPISuite) TestUnknownFileIsNotFound() {
	for _, endpoint := range []string{
		apiclient.EndpointVerify,
		apiclient.EndpointAnalyzeAlterability,
		apiclient.EndpointChat,
		apiclient.EndpointSummarize,
	} {
		resp := s.postJSON(endpoint, `{"file_id":"`+uuid.NewString()+`","message":"hi","document_type":"contract"}`)
		s.Equal(http.StatusNotFound, resp.StatusCode, endpoint)
		s.Equal("File not found", detail(s.T(), resp), endpoint)
	}

	resp := s.postJSON(apiclient.EndpointVerify, `{"file_id":"abc"}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *MockAPISuite) TestMalformedBody() {
	resp := s.postJSON(apiclient.EndpointVerify, `{"file_id":`)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *MockAPISuite) TestHealth() {
	resp, err := http.Get(s.server.URL + apiclient.EndpointHealth)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var health models.Health
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&health))
	s.Equal("healthy", health.Status)
	s.Equal(analysis.MockVersion, health.Version)
}

// TestClientRoundTrip drives the retrying client and the remote analyzer
// against the mock API end to end.
func TestClientRoundTrip(t *testing.T) {
	docs := store.NewInMemoryDocumentStore()
	policy := documents.UploadPolicy{MaxSize: 1024, Extensions: []string{".pdf", ".txt"}}
	r := chi.NewRouter()
	New(analysis.NewMock(), docs, policy, slog.New(slog.DiscardHandler)).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	noWait := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	client, err := apiclient.New(srv.URL, apiclient.WithHTTPClient(srv.Client()), apiclient.WithSleeper(noWait))
	require.NoError(t, err)
	ctx := context.Background()
	file := apiclient.File{Name: "forged_will.txt", ContentType: "text/plain", Content: []byte("I leave everything")}

	verification, err := client.VerifyDocument(ctx, file, "will")
	require.NoError(t, err)
	assert.Less(t, verification.AuthenticityScore, 50)
	assert.False(t, verification.IsValid)

	alterability, err := client.AnalyzeDocument(ctx, file)
	require.NoError(t, err)
	assert.NotEmpty(t, alterability.AlterabilityRisk)

	summary, err := client.SummarizeDocument(ctx, file)
	require.NoError(t, err)
	assert.Contains(t, summary.Summary, "forged_will.txt")

	remote := analysis.NewRemote(client, nil)
	doc := analysis.Document{ID: uuid.New(), Name: "contract.txt", ContentType: "text/plain", Content: []byte("terms")}
	reply, err := remote.Chat(ctx, doc, "Who needs to sign?", []models.ChatMessage{
		{Role: models.RoleUser, Message: "hello"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Signatures are crucial")

	_, err = client.Verify(ctx, uuid.NewString(), "contract")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "File not found")
}
