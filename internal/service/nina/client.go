// Package nina 경보 백엔드(NINA)와의 통신을 담당합니다.
//
// 지역 목록 조회, 푸시 주소 등록, 구독 설정 갱신, 원격 설정 및 이벤트 상세 문서 조회를 제공하며,
// 모든 요청은 fetcher 체인(타임아웃, 재시도, 본문 크기 제한)을 통해 수행됩니다.
package nina

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/darkkaiser/warn-bridge/internal/config"
	"github.com/darkkaiser/warn-bridge/internal/service/fetcher"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/tidwall/gjson"
)

// component 경보 백엔드 게이트웨이 로깅용 컴포넌트 이름
const component = "nina.gateway"

// defaultWarningLevel mowasLevel, dwdLevel, lhpLevel에 설정하는 경보 수준
const defaultWarningLevel = "4"

// Client 경보 백엔드 게이트웨이입니다.
type Client struct {
	fetcher   fetcher.Fetcher
	endpoints config.NinaConfig
}

// New 새로운 Client를 생성합니다.
func New(f fetcher.Fetcher, endpoints config.NinaConfig) *Client {
	endpoints.PushAPIBaseURL = withTrailingSlash(endpoints.PushAPIBaseURL)
	endpoints.EventBaseURL = withTrailingSlash(endpoints.EventBaseURL)

	return &Client{
		fetcher:   f,
		endpoints: endpoints,
	}
}

// FetchRemoteConfig 원격 설정 문서를 내려받아 원문 그대로 반환합니다.
func (c *Client) FetchRemoteConfig(ctx context.Context) ([]byte, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"url": c.endpoints.ConfigURL,
	}).Info("원격 설정 문서를 내려받습니다")

	body, err := c.get(ctx, c.endpoints.ConfigURL, nil)
	if err != nil {
		return nil, newErrGatewayRequest("원격 설정 조회", err)
	}
	return body, nil
}

// ListAllRegionCodes 구독 가능한 모든 지역 코드를 오름차순으로 반환합니다.
//
// 지역 목록 문서는 지역 코드를 키로 하는 객체이며, 정수로 변환할 수 없는 키가 있으면 Gateway 에러를 반환합니다.
func (c *Client) ListAllRegionCodes(ctx context.Context) ([]int64, error) {
	body, err := c.get(ctx, c.endpoints.RegionCatalogURL, nil)
	if err != nil {
		return nil, newErrGatewayRequest("지역 목록 조회", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, newErrGatewayMalformed("지역 목록 조회", "JSON 문서가 아닙니다")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, newErrGatewayMalformed("지역 목록 조회", "지역 코드를 키로 하는 객체가 아닙니다")
	}

	var (
		codes  []int64
		badKey *string
	)
	root.ForEach(func(key, _ gjson.Result) bool {
		code, err := strconv.ParseInt(strings.TrimSpace(key.Str), 10, 64)
		if err != nil {
			badKey = &key.Str
			return false
		}
		codes = append(codes, code)
		return true
	})
	if badKey != nil {
		return nil, newErrGatewayMalformed("지역 목록 조회", "정수가 아닌 지역 코드: "+strconv.Quote(*badKey))
	}

	slices.Sort(codes)
	codes = slices.Compact(codes)

	applog.WithComponentAndFields(component, applog.Fields{
		"count": len(codes),
	}).Info("지역 목록 조회 완료")

	return codes, nil
}

// FetchEvent 경보 식별자에 해당하는 이벤트 상세 문서를 원문 그대로 반환합니다.
func (c *Client) FetchEvent(ctx context.Context, id string) ([]byte, error) {
	u := c.endpoints.EventBaseURL + url.PathEscape(id) + ".json"

	body, err := c.get(ctx, u, nil)
	if err != nil {
		return nil, newErrGatewayRequest("이벤트 상세 조회", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, newErrGatewayMalformed("이벤트 상세 조회", "JSON 문서가 아닙니다")
	}

	return body, nil
}

// preference 구독 설정 항목
type preference struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type preferencesDocument struct {
	Preferences []preference `json:"preferences"`
}

// newPreferencesDocument 구독 설정 문서를 생성합니다.
//
// regions와 regionParts에는 동일한 "[코드,코드,...]" 문자열이 들어갑니다.
func newPreferencesDocument(regionCodes []int64) preferencesDocument {
	parts := make([]string, len(regionCodes))
	for i, code := range regionCodes {
		parts[i] = strconv.FormatInt(code, 10)
	}
	regions := "[" + strings.Join(parts, ",") + "]"

	return preferencesDocument{
		Preferences: []preference{
			{Name: "regions", Type: "INTEGER_ARRAY", Value: regions},
			{Name: "regionParts", Type: "INTEGER_ARRAY", Value: regions},
			{Name: "mowasLevel", Type: "INTEGER", Value: defaultWarningLevel},
			{Name: "dwdLevel", Type: "INTEGER", Value: defaultWarningLevel},
			{Name: "lhpLevel", Type: "INTEGER", Value: defaultWarningLevel},
		},
	}
}

// ConfigureSubscription 푸시 토큰을 등록하고 지역 및 경보 수준 구독 설정을 덮어씁니다.
//
// 구독 설정 조회 결과가 404이면 먼저 푸시 주소를 등록합니다. 같은 인자로 반복 호출해도 안전합니다.
func (c *Client) ConfigureSubscription(ctx context.Context, rc *RemoteConfig, token, clientID string, regionCodes []int64) error {
	switch {
	case rc == nil:
		return ErrNilRemoteConfig
	case token == "":
		return ErrEmptyToken
	case clientID == "":
		return ErrEmptyClientID
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", basicAuth(rc.User, rc.Password))

	preferenceURL := c.endpoints.PushAPIBaseURL + "preference/" + url.PathEscape(clientID)
	registerURL := c.endpoints.PushAPIBaseURL + "address/web/" + url.PathEscape(clientID)

	fields := applog.Fields{
		"client_id": clientID,
		"token":     applog.MaskSensitiveData(token),
		"user":      rc.User,
	}

	// 1. 기존 구독 설정 조회
	registered := true
	if _, err := c.get(ctx, preferenceURL, header); err != nil {
		var statusErr *fetcher.HTTPStatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
			registered = false
		case errors.As(err, &statusErr):
			applog.WithComponentAndFields(component, fields).WithField("status_code", statusErr.StatusCode).
				Warn("구독 설정 조회 응답이 예상과 다릅니다. 구독 설정 갱신을 계속 진행합니다")
		default:
			return newErrGatewayRequest("구독 설정 조회", err)
		}
	}

	// 2. 신규 인스턴스이면 푸시 주소 등록
	if !registered {
		applog.WithComponentAndFields(component, fields).Info("신규 NINA 인스턴스를 등록합니다")

		if err := c.put(ctx, registerURL, header, map[string]string{"token": token}); err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Error("신규 NINA 인스턴스 등록 실패")
			return newErrRegistrationFailed(err)
		}
	}

	// 3. 구독 설정 덮어쓰기
	applog.WithComponentAndFields(component, fields).WithField("regions", len(regionCodes)).Info("지역 구독 설정을 갱신합니다")

	if err := c.put(ctx, preferenceURL, header, newPreferencesDocument(regionCodes)); err != nil {
		applog.WithComponentAndFields(component, fields).WithError(err).Error("구독 설정 갱신 실패")
		return newErrPreferenceUpdateFailed(err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, u string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if header != nil {
		req.Header = header.Clone()
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return fetcher.ReadAll(c.fetcher, req)
}

func (c *Client) put(ctx context.Context, u string, header http.Header, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header = header.Clone()

	_, err = fetcher.ReadAll(c.fetcher, req)
	return err
}

func basicAuth(user, password string) string {
	req := http.Request{Header: http.Header{}}
	req.SetBasicAuth(user, password)
	return req.Header.Get("Authorization")
}

func withTrailingSlash(s string) string {
	if s != "" && !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}
