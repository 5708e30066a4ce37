package errors

import "strconv"

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType int

// 에러 타입 상수
const (
	// Unknown 알 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그 등)
	Internal

	// System 시스템 또는 인프라 오류 (디스크, 프로세스 실행 등)
	System

	// InvalidInput 잘못된 입력값 (설정값, CLI 인자 등)
	InvalidInput

	// CorruptState 저장된 상태 파일이 손상되었거나 스키마와 일치하지 않음
	CorruptState

	// Gateway 원격 백엔드 읽기 요청 실패
	Gateway

	// Registration 푸시 주소 등록 실패
	Registration

	// PreferenceUpdate 구독 설정 갱신 실패
	PreferenceUpdate

	// ParsingFailed 데이터 파싱 또는 형식 변환 실패
	ParsingFailed
)

var errorTypeNames = [...]string{
	Unknown:          "Unknown",
	Internal:         "Internal",
	System:           "System",
	InvalidInput:     "InvalidInput",
	CorruptState:     "CorruptState",
	Gateway:          "Gateway",
	Registration:     "Registration",
	PreferenceUpdate: "PreferenceUpdate",
	ParsingFailed:    "ParsingFailed",
}

// String ErrorType의 이름을 반환합니다.
func (t ErrorType) String() string {
	if t >= 0 && int(t) < len(errorTypeNames) {
		return errorTypeNames[t]
	}
	return "ErrorType(" + strconv.Itoa(int(t)) + ")"
}
