package nina

import (
	"github.com/tidwall/gjson"
)

// RemoteConfig 푸시 전송 계층 초기화와 백엔드 인증에 필요한 원격 설정 값입니다.
type RemoteConfig struct {
	// 전송 계층 (Firebase Cloud Messaging)
	ProjectID string
	AppID     string
	APIKey    string
	SenderID  string

	// 백엔드 Basic 인증
	User     string
	Password string
}

// remoteConfigFields 원격 설정 문서에서 반드시 존재해야 하는 항목의 경로입니다.
var remoteConfigFields = []struct {
	path string
	set  func(c *RemoteConfig, v string)
}{
	{"firebaseConfig.projectId", func(c *RemoteConfig, v string) { c.ProjectID = v }},
	{"firebaseConfig.appId", func(c *RemoteConfig, v string) { c.AppID = v }},
	{"firebaseConfig.apiKey", func(c *RemoteConfig, v string) { c.APIKey = v }},
	{"firebaseConfig.messagingSenderId", func(c *RemoteConfig, v string) { c.SenderID = v }},
	{"npnsConfig.user", func(c *RemoteConfig, v string) { c.User = v }},
	{"npnsConfig.password", func(c *RemoteConfig, v string) { c.Password = v }},
}

// ParseRemoteConfig 원격 설정 문서를 해석합니다.
//
// 필수 항목이 하나라도 없거나 문자열이 아니면 누락된 경로 목록을 담은 ParsingFailed 에러를 반환합니다.
func ParseRemoteConfig(doc []byte) (*RemoteConfig, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, newErrInvalidRemoteConfig([]string{"<document>"})
	}

	var (
		cfg     RemoteConfig
		missing []string
	)

	results := gjson.GetManyBytes(doc, paths()...)
	for i, f := range remoteConfigFields {
		v := results[i]
		if v.Type != gjson.String || v.Str == "" {
			missing = append(missing, f.path)
			continue
		}
		f.set(&cfg, v.Str)
	}

	if len(missing) > 0 {
		return nil, newErrInvalidRemoteConfig(missing)
	}

	return &cfg, nil
}

func paths() []string {
	p := make([]string, len(remoteConfigFields))
	for i, f := range remoteConfigFields {
		p[i] = f.path
	}
	return p
}
