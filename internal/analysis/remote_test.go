package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/analysis/models"
	"docverify/internal/apiclient"
)

type fakeAPI struct {
	mu        sync.Mutex
	uploads   int
	verifyErr []error
	fileIDs   []string
}

func (f *fakeAPI) Upload(_ context.Context, name, _ string, _ []byte) (models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return models.UploadResult{FileID: name + "-" + string(rune('0'+f.uploads)), Filename: name}, nil
}

func (f *fakeAPI) Verify(_ context.Context, fileID, documentType string) (models.VerificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileIDs = append(f.fileIDs, fileID)
	if len(f.verifyErr) > 0 {
		err := f.verifyErr[0]
		f.verifyErr = f.verifyErr[1:]
		if err != nil {
			return models.VerificationResult{}, err
		}
	}
	return models.VerificationResult{Summary: documentType, RiskLevel: models.RiskLow}, nil
}

func (f *fakeAPI) AnalyzeAlterability(_ context.Context, fileID string) (models.AlterabilityAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileIDs = append(f.fileIDs, fileID)
	return models.AlterabilityAnalysis{AlterabilityRisk: models.RiskLow}, nil
}

func (f *fakeAPI) Chat(_ context.Context, fileID, message string, _ []models.ChatMessage) (models.ChatResponse, error) {
	return models.ChatResponse{Response: "re: " + message}, nil
}

func (f *fakeAPI) Summarize(_ context.Context, fileID string) (models.Summary, error) {
	return models.Summary{Summary: fileID}, nil
}

func (f *fakeAPI) Health(context.Context) (models.Health, error) {
	return models.Health{Status: "healthy", Version: "2.0.0"}, nil
}

func TestRemoteUploadsOncePerDocument(t *testing.T) {
	api := &fakeAPI{}
	r := NewRemote(api, nil)
	d := Document{ID: uuid.New(), Name: "lease.pdf"}
	ctx := context.Background()

	res, err := r.Verify(ctx, d, "lease")
	require.NoError(t, err)
	assert.Equal(t, "lease", res.Summary)

	_, err = r.AnalyzeAlterability(ctx, d)
	require.NoError(t, err)

	sum, err := r.Summarize(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "lease.pdf-1", sum.Summary)

	chat, err := r.Chat(ctx, d, "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "re: hi", chat.Response)

	assert.Equal(t, 1, api.uploads)
	assert.Equal(t, []string{"lease.pdf-1", "lease.pdf-1"}, api.fileIDs)
}

func TestRemoteReuploadsWhenBackendForgetsFile(t *testing.T) {
	api := &fakeAPI{verifyErr: []error{
		&apiclient.RequestError{Endpoint: apiclient.EndpointVerify, Attempts: 4, Err: &apiclient.StatusError{StatusCode: 404, Message: "File not found"}},
	}}
	r := NewRemote(api, nil)
	d := Document{ID: uuid.New(), Name: "nda.pdf"}

	_, err := r.Verify(context.Background(), d, "nda")
	require.NoError(t, err)
	assert.Equal(t, 2, api.uploads)
	assert.Equal(t, []string{"nda.pdf-1", "nda.pdf-2"}, api.fileIDs)
}

func TestRemotePropagatesOtherFailures(t *testing.T) {
	boom := &apiclient.RequestError{Endpoint: apiclient.EndpointVerify, Attempts: 4, Err: errors.New("connection refused")}
	api := &fakeAPI{verifyErr: []error{boom}}
	r := NewRemote(api, nil)

	_, err := r.Verify(context.Background(), Document{ID: uuid.New(), Name: "a.pdf"}, "nda")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, api.uploads)
}

func TestRemoteForget(t *testing.T) {
	api := &fakeAPI{}
	r := NewRemote(api, nil)
	d := Document{ID: uuid.New(), Name: "a.pdf"}

	_, err := r.Verify(context.Background(), d, "nda")
	require.NoError(t, err)
	r.Forget(d.ID)
	_, err = r.Verify(context.Background(), d, "nda")
	require.NoError(t, err)
	assert.Equal(t, 2, api.uploads)

	h, err := r.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", h.Version)
}
