// Package alert 푸시 페이로드와 이벤트 상세 문서를 해석하여 경보 요약(PushAlert)과 상세 정보(EventDetail)를 만듭니다.
package alert

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"
)

// Provider 경보 발행 기관 코드
const (
	ProviderMOWAS = "MOWAS"
	ProviderDWD   = "DWD"
)

// acceptedProviders 디스패치 대상으로 허용하는 발행 기관 목록
var acceptedProviders = []string{ProviderMOWAS, ProviderDWD}

// PushAlert 수신한 푸시 메시지의 요약입니다.
//
// ID는 항상 존재하며, 나머지 필드는 백엔드가 생략하면 nil(JSON null)입니다.
// 필드 순서는 디스패치 프로토콜의 첫 번째 줄 형식과 일치합니다.
type PushAlert struct {
	ID        string  `json:"id"`
	MsgType   *string `json:"msgType"`
	Headline  *string `json:"headline"`
	Provider  *string `json:"provider"`
	Severity  *string `json:"severity"`
	EventCode *string `json:"event_code"`

	// document data.custom에서 꺼낸 원본 경보 문서
	document []byte
}

// Document 경보 요약을 추출한 원본 문서를 반환합니다. (received/push_{id}.json 보관용)
func (a *PushAlert) Document() []byte {
	return a.document
}

// IsAccepted 디스패치 대상 발행 기관(MOWAS, DWD)의 경보인지 확인합니다.
func (a *PushAlert) IsAccepted() bool {
	return a.Provider != nil && slices.Contains(acceptedProviders, *a.Provider)
}

// ProviderName 로그 출력용 발행 기관 이름을 반환합니다.
func (a *PushAlert) ProviderName() string {
	if a.Provider == nil {
		return "<none>"
	}
	return *a.Provider
}

// MarshalLine 경보 요약을 개행 문자로 끝나는 한 줄의 JSON으로 직렬화합니다.
func (a *PushAlert) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ParsePushPayload 전송 계층이 전달한 푸시 페이로드를 해석합니다.
//
// 페이로드의 data.custom 필드가 문자열이면 그 안에 인코딩된 문서를 다시 디코딩하여 경보 문서로 사용하고,
// data.custom이 없으면 페이로드 자체를 경보 문서로 간주합니다.
// 경보 문서의 최상위 id가 없거나, 바깥 또는 안쪽 JSON이 손상된 경우 ParsingFailed 에러를 반환합니다.
// id와 data 아래 요약 필드는 문자열(또는 null)이어야 하며, 다른 타입이면 ParsingFailed 에러입니다.
func ParsePushPayload(payload []byte) (*PushAlert, error) {
	if err := json.Unmarshal(payload, new(json.RawMessage)); err != nil {
		return nil, newErrMalformedPayload(err)
	}

	doc := payload
	if custom := gjson.GetBytes(payload, "data.custom"); custom.Exists() {
		if custom.Type != gjson.String || !gjson.Valid(custom.Str) || !gjson.Parse(custom.Str).IsObject() {
			return nil, newErrMalformedCustom()
		}
		doc = []byte(custom.Str)
	}

	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, newErrMalformedCustom()
	}

	id := root.Get("id")
	switch {
	case id.Type == gjson.Null, id.Type == gjson.String && id.Str == "":
		return nil, ErrMissingIdentifier
	case id.Type != gjson.String:
		return nil, newErrFieldNotString("id")
	}

	a := &PushAlert{ID: id.Str, document: doc}
	fields := []struct {
		path string
		dst  **string
	}{
		{"data.msgType", &a.MsgType},
		{"data.headline", &a.Headline},
		{"data.provider", &a.Provider},
		{"data.severity", &a.Severity},
		{"data.transKeys.event", &a.EventCode},
	}
	for _, f := range fields {
		v, err := stringField(root, f.path)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return a, nil
}

// stringField path의 값이 없거나 null이면 nil을, 문자열이면 그 값을 반환합니다.
// 숫자, 객체 등 다른 타입은 문자열로 바꾸지 않고 에러로 처리합니다.
func stringField(root gjson.Result, path string) (*string, error) {
	v := root.Get(path)
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.String:
		s := v.Str
		return &s, nil
	default:
		return nil, newErrFieldNotString(path)
	}
}

// optionalString path의 값이 없거나 null이면 nil을 반환합니다. 다른 타입은 문자열로 변환합니다.
func optionalString(root gjson.Result, path string) *string {
	v := root.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}
