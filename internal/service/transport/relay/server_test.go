package relay

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/warn-bridge/internal/config"
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	"github.com/darkkaiser/warn-bridge/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppKey = "relay-secret-key"

func newTestServer(t *testing.T, mutate func(*config.RelayConfig)) (*Server, *Transport, *echo.Echo) {
	t.Helper()

	cfg := config.Default().Relay
	cfg.AppKey = testAppKey
	if mutate != nil {
		mutate(&cfg)
	}

	tr := New(testRemoteConfig(), nil)
	s := NewServer(cfg, false, tr)

	return s, tr, s.newEcho()
}

func doRequest(e *echo.Echo, method, target, body, appKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if appKey != "" {
		req.Header.Set(HeaderAppKey, appKey)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestServer_AppKeyAuth(t *testing.T) {
	_, _, e := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, doRequest(e, http.MethodGet, "/v1/registration", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(e, http.MethodGet, "/v1/registration", "", "wrong").Code)
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/v1/registration", "", testAppKey).Code)

	_, _, open := newTestServer(t, func(c *config.RelayConfig) { c.AppKey = "" })
	assert.Equal(t, http.StatusOK, doRequest(open, http.MethodGet, "/v1/registration", "", "").Code)
}

func TestServer_GetRegistration(t *testing.T) {
	_, _, e := newTestServer(t, nil)

	rec := doRequest(e, http.MethodGet, "/v1/registration", "", testAppKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "nina-project", got.ProjectID)
	assert.Equal(t, "123", got.SenderID)
	assert.NotContains(t, rec.Body.String(), "secret", "구독 API 비밀번호는 노출하지 않아야 합니다")
}

func TestServer_PutCredentials(t *testing.T) {
	_, tr, e := newTestServer(t, nil)

	var rotated transport.Credentials
	tr.OnCredentialsRotated(func(creds transport.Credentials) error {
		rotated = creds
		return nil
	})

	for _, body := range []string{`[]`, `"token"`, `null`, `{broken`} {
		rec := doRequest(e, http.MethodPut, "/v1/credentials", body, testAppKey)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Nil(t, rotated)

	rec := doRequest(e, http.MethodPut, "/v1/credentials", `{"fcm":{"registration":{"token":"t-1"}}}`, testAppKey)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rotated, "fcm")

	token, err := tr.Register(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t-1", token)
}

func TestServer_PostMessage(t *testing.T) {
	_, tr, e := newTestServer(t, nil)

	rec := doRequest(e, http.MethodPost, "/v1/messages", `{"id":"a"}`, testAppKey)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "수신 시작 전에는 503이어야 합니다")

	require.NoError(t, tr.Start(context.Background(), func(_ context.Context, payload []byte) error {
		switch string(payload) {
		case `malformed`:
			return apperrors.New(apperrors.ParsingFailed, "bad payload")
		case `boom`:
			return apperrors.New(apperrors.Internal, "unexpected")
		case `panic`:
			panic("handler panic")
		}
		return nil
	}))

	tests := []struct {
		body string
		want int
	}{
		{body: `{"id":"a"}`, want: http.StatusAccepted},
		{body: `malformed`, want: http.StatusUnprocessableEntity},
		{body: `boom`, want: http.StatusInternalServerError},
		{body: `panic`, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/v1/messages", tt.body, testAppKey)
			assert.Equal(t, tt.want, rec.Code)

			var resp statusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.ResultCode)
		})
	}
}

func TestServer_BodyLimit(t *testing.T) {
	_, tr, e := newTestServer(t, func(c *config.RelayConfig) { c.BodyLimit = "1K" })
	require.NoError(t, tr.Start(context.Background(), func(context.Context, []byte) error { return nil }))

	rec := doRequest(e, http.MethodPost, "/v1/messages", strings.Repeat("x", 4096), testAppKey)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_RateLimiting(t *testing.T) {
	_, _, e := newTestServer(t, func(c *config.RelayConfig) {
		c.RateLimitPerSecond = 0.001
		c.RateLimitBurst = 1
	})

	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/v1/registration", "", testAppKey).Code)

	rec := doRequest(e, http.MethodGet, "/v1/registration", "", testAppKey)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiting_InvalidArguments(t *testing.T) {
	assert.Panics(t, func() { rateLimiting(0, 1) })
	assert.Panics(t, func() { rateLimiting(1, 0) })
}

func TestServer_StartAndShutdown(t *testing.T) {
	addr := testutil.FreeListenAddress(t)
	s, _, _ := newTestServer(t, func(c *config.RelayConfig) { c.ListenAddress = addr })

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	// 중복 시작은 무시되고 wg.Done()이 즉시 호출됩니다.
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	require.NoError(t, testutil.WaitForServer(addr, 2*time.Second))

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/v1/registration", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderAppKey, testAppKey)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	wg.Wait()

	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	assert.False(t, s.running)
}

func TestServer_StartFailsWhenAddressInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	s, _, _ := newTestServer(t, func(c *config.RelayConfig) { c.ListenAddress = occupied.Addr().String() })

	wg := &sync.WaitGroup{}
	wg.Add(1)
	err = s.Start(context.Background(), wg)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.System))
	assert.Contains(t, err.Error(), occupied.Addr().String())

	// 실패 시에도 wg.Done()이 호출되어야 합니다.
	wg.Wait()

	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	assert.False(t, s.running)
}

func TestStartTransport_RotationBeforeRegister(t *testing.T) {
	cfg := config.Default().Relay
	cfg.AppKey = testAppKey
	cfg.ListenAddress = testutil.FreeListenAddress(t)

	var (
		mu    sync.Mutex
		saved []transport.Credentials
	)
	onRotated := func(creds transport.Credentials) error {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, creds)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer func() {
		cancel()
		wg.Wait()
	}()

	tr, err := StartTransport(ctx, wg, cfg, false, testRemoteConfig(), nil, onRotated)
	require.NoError(t, err)
	require.NoError(t, testutil.WaitForServer(cfg.ListenAddress, 2*time.Second))

	// Register 이전, 서버 기동 직후에 도착한 자격 증명
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	req, err := http.NewRequest(http.MethodPut, "http://"+cfg.ListenAddress+"/v1/credentials", strings.NewReader(`{"fcm":{"registration":{"token":"tok-1"}}}`))
	require.NoError(t, err)
	req.Header.Set(HeaderAppKey, testAppKey)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	mu.Lock()
	require.Len(t, saved, 1)
	assert.Equal(t, "tok-1", tokenOf(saved[0]))
	mu.Unlock()

	regCtx, regCancel := context.WithTimeout(ctx, time.Second)
	defer regCancel()
	token, err := tr.Register(regCtx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestStartTransport_AddressInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	cfg := config.Default().Relay
	cfg.ListenAddress = occupied.Addr().String()

	wg := &sync.WaitGroup{}
	tr, err := StartTransport(context.Background(), wg, cfg, false, testRemoteConfig(), nil, func(transport.Credentials) error { return nil })

	require.Error(t, err)
	assert.Nil(t, tr)
	wg.Wait()
}
