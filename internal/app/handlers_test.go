package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"SecretEndpoint-Go/internal/config"
	"SecretEndpoint-Go/internal/secrets"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/cockroachdb/errors"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeAccessor struct {
	calls   atomic.Int32
	secrets []string
	data    []byte
	err     error
}

func (f *fakeAccessor) AccessLatest(_ context.Context, secret string) (*secrets.Payload, error) {
	f.calls.Add(1)
	f.secrets = append(f.secrets, secret)
	if f.err != nil {
		return nil, f.err
	}
	return &secrets.Payload{Name: secret, Data: f.data}, nil
}

func (f *fakeAccessor) Close() error { return nil }

// fakeSecretManager stands in for the Secret Manager gRPC client.
type fakeSecretManager struct {
	names []string
	data  []byte
	err   error
}

func (f *fakeSecretManager) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.names = append(f.names, req.GetName())
	if f.err != nil {
		return nil, f.err
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: f.data},
	}, nil
}

func (f *fakeSecretManager) Close() error { return nil }

func gcpConfig(secret string) config.Config {
	return config.Config{
		ProjectID:  "my-project",
		SecretName: secret,
		Provider:   config.ProviderGCP,
		Addr:       config.DefaultAddr,
		RateBurst:  1,
	}
}

func serve(t *testing.T, a *App, method string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleSecretDefaultName(t *testing.T) {
	client := &fakeSecretManager{data: []byte("hunter2")}
	accessor := secrets.NewGCPAccessorWithClient(client, "my-project")
	a := NewApp(gcpConfig(config.DefaultSecretName), accessor, zaptest.NewLogger(t))

	rec := serve(t, a, http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Secret value: hunter2\n", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, []string{"projects/my-project/secrets/db-password/versions/latest"}, client.names)
}

func TestHandleSecretCustomName(t *testing.T) {
	client := &fakeSecretManager{data: []byte("v")}
	accessor := secrets.NewGCPAccessorWithClient(client, "my-project")
	a := NewApp(gcpConfig("other-secret"), accessor, zaptest.NewLogger(t))

	rec := serve(t, a, http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, client.names, 1)
	assert.Contains(t, client.names[0], "secrets/other-secret/versions/latest")
	assert.NotContains(t, client.names[0], "db-password")
}

func TestHandleSecretMissingProjectID(t *testing.T) {
	cfg := gcpConfig(config.DefaultSecretName)
	cfg.ProjectID = ""
	accessor := &fakeAccessor{data: []byte("hunter2")}
	a := NewApp(cfg, accessor, zaptest.NewLogger(t))

	rec := serve(t, a, http.MethodGet)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Equal(t, int32(0), accessor.calls.Load())
}

func TestHandleSecretUpstreamNotFound(t *testing.T) {
	client := &fakeSecretManager{err: status.Error(codes.NotFound, "Secret [db-password] not found")}
	accessor := secrets.NewGCPAccessorWithClient(client, "my-project")
	a := NewApp(gcpConfig(config.DefaultSecretName), accessor, zaptest.NewLogger(t))

	rec := serve(t, a, http.MethodGet)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Secret value")
}

func TestHandleSecretErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		data []byte
		want int
	}{
		{"permission denied", errors.Mark(errors.New("denied"), secrets.ErrPermissionDenied), nil, http.StatusForbidden},
		{"network failure", errors.New("connection refused"), nil, http.StatusBadGateway},
		{"invalid utf-8", nil, []byte{0xff, 0xfe}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessor := &fakeAccessor{err: tt.err, data: tt.data}
			a := NewApp(gcpConfig(config.DefaultSecretName), accessor, zaptest.NewLogger(t))

			rec := serve(t, a, http.MethodGet)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, http.StatusText(tt.want)+"\n", rec.Body.String())
		})
	}
}

func TestHandleSecretRejectsOtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			accessor := &fakeAccessor{data: []byte("hunter2")}
			a := NewApp(gcpConfig(config.DefaultSecretName), accessor, zaptest.NewLogger(t))

			rec := serve(t, a, method)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.NotContains(t, rec.Body.String(), "hunter2")
			assert.Equal(t, int32(0), accessor.calls.Load())
		})
	}
}

func TestHandleSecretNoCaching(t *testing.T) {
	accessor := &fakeAccessor{data: []byte("hunter2")}
	a := NewApp(gcpConfig(config.DefaultSecretName), accessor, zaptest.NewLogger(t))

	first := serve(t, a, http.MethodGet)
	second := serve(t, a, http.MethodGet)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, int32(2), accessor.calls.Load())
	assert.Equal(t, []string{"db-password", "db-password"}, accessor.secrets)
}

func TestRateLimit(t *testing.T) {
	cfg := gcpConfig(config.DefaultSecretName)
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	accessor := &fakeAccessor{data: []byte("hunter2")}
	a := NewApp(cfg, accessor, zaptest.NewLogger(t))
	require.NotNil(t, a.RateLimiter)

	first := serve(t, a, http.MethodGet)
	second := serve(t, a, http.MethodGet)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, int32(1), accessor.calls.Load())
}

func TestRequestIDPropagated(t *testing.T) {
	a := NewApp(gcpConfig(config.DefaultSecretName), &fakeAccessor{data: []byte("x")}, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
