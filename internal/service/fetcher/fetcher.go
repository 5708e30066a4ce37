// Package fetcher 원격 경보 백엔드 호출에 사용하는 HTTP 요청 체인을 제공합니다.
//
// 기본 HTTP 클라이언트 위에 상태 코드 검사, 문자셋 변환, 본문 크기 제한, 재시도를
// 데코레이터로 조합하며, 조합된 체인은 New(Config)로 생성합니다.
package fetcher

import (
	"context"
	"io"
	"net/http"
)

// component Fetcher 로깅용 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 핵심 인터페이스입니다.
//
// 구현 시 주의사항:
//   - 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
//   - Context 취소 시 즉시 요청을 중단하고 에러를 반환해야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송하는 헬퍼 함수입니다.
func Get(ctx context.Context, f Fetcher, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newErrInvalidRequest(url, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	return resp, nil
}

// ReadAll 요청을 수행하고 응답 본문 전체를 읽어 반환합니다.
// 응답 본문은 이 함수 안에서 닫힙니다.
func ReadAll(f Fetcher, req *http.Request) ([]byte, error) {
	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newErrReadBody(req.URL.String(), err)
	}

	return body, nil
}
