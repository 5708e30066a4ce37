package nina

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/warn-bridge/internal/config"
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/service/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "0b6f2b3c-4a5d-4e6f-8a9b-0c1d2e3f4a5b"

var testRemoteConfig = &RemoteConfig{User: "npns", Password: "secret"}

// fakeBackend 구독 API를 흉내 내는 멱등한 테스트용 백엔드
type fakeBackend struct {
	mu sync.Mutex

	registeredToken string
	preferences     map[string]json.RawMessage
	calls           []string

	failRegister   bool
	failPreference bool
	getStatus      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{preferences: make(map[string]json.RawMessage)}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, r.Method+" "+r.URL.Path)

	if user, pass, ok := r.BasicAuth(); !ok || user != "npns" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, _ := io.ReadAll(r.Body)

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/push/preference/"):
		if b.getStatus != 0 {
			w.WriteHeader(b.getStatus)
			return
		}
		pref, ok := b.preferences[strings.TrimPrefix(r.URL.Path, "/push/preference/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(pref)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/push/address/web/"):
		if b.failRegister {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var doc struct{ Token string }
		json.Unmarshal(body, &doc)
		b.registeredToken = doc.Token
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/push/preference/"):
		if b.failPreference {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b.preferences[strings.TrimPrefix(r.URL.Path, "/push/preference/")] = body
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	endpoints := config.Default().Nina
	endpoints.PushAPIBaseURL = ts.URL + "/push"
	endpoints.ConfigURL = ts.URL + "/config.json"
	endpoints.RegionCatalogURL = ts.URL + "/regions.json"
	endpoints.EventBaseURL = ts.URL + "/warnings"

	f := fetcher.New(fetcher.Config{Timeout: 5 * time.Second, MinRetryDelay: time.Millisecond, MaxRetryDelay: time.Millisecond})
	return New(f, endpoints), ts
}

func TestConfigureSubscription_RegistersNewInstance(t *testing.T) {
	backend := newFakeBackend()
	c, _ := newTestClient(t, backend)

	err := c.ConfigureSubscription(context.Background(), testRemoteConfig, "fcm-token", testClientID, []int64{91620000000, 53150000000})
	require.NoError(t, err)

	assert.Equal(t, "fcm-token", backend.registeredToken)
	assert.Equal(t, []string{
		"GET /push/preference/" + testClientID,
		"PUT /push/address/web/" + testClientID,
		"PUT /push/preference/" + testClientID,
	}, backend.calls)

	assert.JSONEq(t, `{"preferences":[
		{"name":"regions","type":"INTEGER_ARRAY","value":"[91620000000,53150000000]"},
		{"name":"regionParts","type":"INTEGER_ARRAY","value":"[91620000000,53150000000]"},
		{"name":"mowasLevel","type":"INTEGER","value":"4"},
		{"name":"dwdLevel","type":"INTEGER","value":"4"},
		{"name":"lhpLevel","type":"INTEGER","value":"4"}
	]}`, string(backend.preferences[testClientID]))
}

func TestConfigureSubscription_Idempotent(t *testing.T) {
	backend := newFakeBackend()
	c, _ := newTestClient(t, backend)

	regions := []int64{1, 2, 3}
	require.NoError(t, c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, regions))
	first := string(backend.preferences[testClientID])

	require.NoError(t, c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, regions))
	second := string(backend.preferences[testClientID])

	assert.JSONEq(t, first, second)
	assert.Len(t, backend.calls, 5, "두 번째 호출에서는 등록 요청을 보내지 않아야 합니다")
}

func TestConfigureSubscription_UnexpectedGetStatusProceeds(t *testing.T) {
	backend := newFakeBackend()
	backend.getStatus = http.StatusForbidden
	c, _ := newTestClient(t, backend)

	require.NoError(t, c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, []int64{1}))

	assert.Empty(t, backend.registeredToken)
	assert.Contains(t, backend.preferences, testClientID)
}

func TestConfigureSubscription_Failures(t *testing.T) {
	t.Run("등록 실패", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failRegister = true
		c, _ := newTestClient(t, backend)

		err := c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, []int64{1})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Registration))
		assert.NotContains(t, backend.preferences, testClientID)
	})

	t.Run("구독 설정 갱신 실패", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failPreference = true
		c, _ := newTestClient(t, backend)

		err := c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, []int64{1})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.PreferenceUpdate))
	})

	t.Run("조회 중 연결 실패", func(t *testing.T) {
		c, ts := newTestClient(t, newFakeBackend())
		ts.Close()

		err := c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", testClientID, []int64{1})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Gateway))
	})

	t.Run("잘못된 인자", func(t *testing.T) {
		c, _ := newTestClient(t, newFakeBackend())

		assert.ErrorIs(t, c.ConfigureSubscription(context.Background(), nil, "tok", testClientID, nil), ErrNilRemoteConfig)
		assert.ErrorIs(t, c.ConfigureSubscription(context.Background(), testRemoteConfig, "", testClientID, nil), ErrEmptyToken)
		assert.ErrorIs(t, c.ConfigureSubscription(context.Background(), testRemoteConfig, "tok", "", nil), ErrEmptyClientID)
	})
}

func TestListAllRegionCodes(t *testing.T) {
	t.Run("정렬된 정수 코드", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"091620000000":{"NAME":"München"},"010010000000":{"NAME":"Flensburg"}}`))
		}))

		codes, err := c.ListAllRegionCodes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int64{10010000000, 91620000000}, codes)
	})

	for name, body := range map[string]string{
		"정수가 아닌 키": `{"abc":{}}`,
		"빈 키":      `{"010010000000":{},"":{},"091620000000":{}}`,
		"객체가 아님":   `[1,2]`,
		"손상된 JSON": `{"1":`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))

			_, err := c.ListAllRegionCodes(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.Gateway))
		})
	}

	t.Run("non-2xx", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.ListAllRegionCodes(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Gateway))
	})
}

func TestFetchEvent(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/warnings/mow.DE-1.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("{\n  \"identifier\": \"mow.DE-1\"\n}"))
	}))

	doc, err := c.FetchEvent(context.Background(), "mow.DE-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"identifier":"mow.DE-1"}`, string(doc))

	_, err = c.FetchEvent(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Gateway))
}

func TestFetchRemoteConfig(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"firebaseConfig":{}}`))
	}))

	doc, err := c.FetchRemoteConfig(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"firebaseConfig":{}}`, string(doc))
}
