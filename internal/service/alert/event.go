package alert

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultLinkBaseURL 경보 상세 페이지 링크의 기본 접두사
const DefaultLinkBaseURL = "https://warnung.bund.de/meldungen/"

// germanLanguageTags 상세 정보를 추출할 로캘 블록의 언어 태그
var germanLanguageTags = []string{"DE", "de-DE"}

// EventDetail 이벤트 상세 문서에서 독일어 로캘 블록을 골라 추출한 경보 상세 정보입니다.
//
// 독일어 블록이 없으면 Headline, Description, Instruction은 nil이지만
// Identifier와 Link는 항상 채워집니다.
type EventDetail struct {
	Identifier  string  `json:"identifier"`
	Headline    *string `json:"headline"`
	Description *string `json:"description"`
	Instruction *string `json:"instruction"`
	Link        string  `json:"link"`
}

// ParseEvent 이벤트 상세 문서를 해석합니다.
//
// info 블록은 배열 또는 객체(로캘별 맵) 형태 모두를 허용하며, 순서와 관계없이
// 언어 태그가 "DE" 또는 "de-DE"인 첫 번째 블록을 사용합니다.
// linkBaseURL이 비어 있으면 DefaultLinkBaseURL을 사용합니다.
func ParseEvent(doc []byte, linkBaseURL string) (*EventDetail, error) {
	if !gjson.ValidBytes(doc) {
		return nil, newErrMalformedEvent()
	}

	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, newErrMalformedEvent()
	}

	identifier := root.Get("identifier")
	if !identifier.Exists() || identifier.String() == "" {
		return nil, ErrMissingIdentifier
	}

	if linkBaseURL == "" {
		linkBaseURL = DefaultLinkBaseURL
	}
	if !strings.HasSuffix(linkBaseURL, "/") {
		linkBaseURL += "/"
	}

	detail := &EventDetail{
		Identifier: identifier.String(),
		Link:       linkBaseURL + identifier.String(),
	}

	root.Get("info").ForEach(func(_, info gjson.Result) bool {
		if !isGermanLanguage(info.Get("language").String()) {
			return true
		}

		detail.Headline = optionalString(info, "headline")
		detail.Description = optionalString(info, "description")
		detail.Instruction = optionalString(info, "instruction")
		return false
	})

	return detail, nil
}

func isGermanLanguage(tag string) bool {
	for _, t := range germanLanguageTags {
		if tag == t {
			return true
		}
	}
	return false
}
