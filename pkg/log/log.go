// Package log 브리지 전역에서 사용하는 logrus 기반 로깅 유틸리티를 제공합니다.
//
// Setup으로 파일(lumberjack 로테이션)과 콘솔 출력을 구성한 뒤,
// 각 컴포넌트는 WithComponent / WithComponentAndFields로 component 필드가 포함된 Entry를 얻어 사용합니다.
package log

import (
	"github.com/sirupsen/logrus"
)

// WithComponent component 필드를 포함한 로그 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드를 포함한 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	newFields := make(Fields, len(fields)+1)
	for k, v := range fields {
		newFields[k] = v
	}
	newFields["component"] = component

	return logrus.WithFields(newFields)
}

// SetDebugMode Debug 모드 여부에 따라 전역 로그 레벨을 변경합니다.
//   - Debug 모드: Trace 레벨
//   - 운영 모드: Info 레벨
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
	} else {
		logrus.SetLevel(InfoLevel)
	}
}

// StandardLogger 전역 logrus Logger를 반환합니다. (cron 등 외부 라이브러리 어댑터용)
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}

// MaskSensitiveData 토큰, 비밀번호 등 민감한 정보를 로그에 남기기 전에 마스킹합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}

	// 3자 이하는 전체 마스킹
	if len(data) <= 3 {
		return "***"
	}

	// 12자 이하는 앞 4자만 표시
	if len(data) <= 12 {
		return data[:4] + "***"
	}

	// 긴 토큰은 앞 4자 + 마스킹 + 뒤 4자
	return data[:4] + "***" + data[len(data)-4:]
}
