// Package errors 애플리케이션 전용 에러 처리 시스템을 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며, Wrap 함수를 통해 컨텍스트를 누적할 수 있습니다.
// 브리지의 실패 유형은 다음과 같이 매핑됩니다:
//
//	CorruptState     저장된 상태 파일(nina_id.json 등)을 해석할 수 없음 (기동 중단)
//	Gateway          원격 백엔드 조회 실패 (2xx 이외 응답, 잘못된 JSON, 타임아웃)
//	Registration     푸시 주소 등록(PUT address) 실패 (기동 중단)
//	PreferenceUpdate 구독 설정(PUT preference) 실패 (기동 중단)
//	ParsingFailed    수신한 푸시 페이로드 해석 실패 (메시지 단위로 버려짐)
//
// 사용 예:
//
//	if err != nil {
//	    return errors.Wrap(err, errors.Gateway, "지역 목록 조회 실패")
//	}
//
//	if errors.Is(err, errors.CorruptState) {
//	    // 운영자 개입 필요
//	}
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError ErrorType, 메시지, 원인 에러, 생성 시점의 호출 스택을 함께 담는 에러입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   []StackFrame
}

func newAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		errType: errType,
		message: message,
		cause:   cause,
		stack:   captureStack(defaultCallerSkip),
	}
}

// New 원인 에러 없이 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return newAppError(errType, message, nil)
}

// Newf New와 같으며 메시지를 포맷 문자열로 만듭니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return newAppError(errType, fmt.Sprintf(format, args...), nil)
}

// Wrap err을 원인으로 하는 새로운 에러를 생성합니다. err이 nil이면 nil을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return newAppError(errType, message, err)
}

// Wrapf Wrap과 같으며 메시지를 포맷 문자열로 만듭니다.
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return newAppError(errType, fmt.Sprintf(format, args...), err)
}

func (e *AppError) Type() ErrorType     { return e.errType }
func (e *AppError) Message() string     { return e.message }
func (e *AppError) Stack() []StackFrame { return e.stack }
func (e *AppError) Unwrap() error       { return e.cause }

func (e *AppError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.errType, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
}

// Format %+v로 출력하면 원인 체인과 스택 트레이스를 함께 기록합니다.
//
// 스택은 체인의 가장 안쪽 AppError(또는 외부 에러를 감싼 AppError)에서만 출력하여
// 같은 호출 경로가 여러 번 찍히지 않도록 합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

		var inner *AppError
		if e.cause == nil || !errors.As(e.cause, &inner) {
			e.writeStack(s)
		}

		if e.cause != nil {
			fmt.Fprint(s, "\nCaused by:\n")
			if f, ok := e.cause.(fmt.Formatter); ok {
				f.Format(s, verb)
			} else {
				fmt.Fprintf(s, "\t%v", e.cause)
			}
		}
	case verb == 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		io.WriteString(s, e.Error())
	}
}

func (e *AppError) writeStack(w io.Writer) {
	if len(e.stack) == 0 {
		return
	}

	fmt.Fprint(w, "\nStack trace:")
	for _, frame := range e.stack {
		fn := frame.Function
		if idx := strings.LastIndex(fn, "/"); idx != -1 {
			fn = fn[idx+1:]
		}
		fmt.Fprintf(w, "\n\t%s:%d %s", frame.File, frame.Line, fn)
	}
}

// Is 에러 체인 중 하나라도 errType인 AppError가 있으면 true를 반환합니다.
func Is(err error, errType ErrorType) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok && appErr.errType == errType {
			return true
		}
	}
	return false
}

// As errors.As와 같습니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// RootCause 에러 체인의 가장 안쪽 에러를 반환합니다.
func RootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err
}

// UnderlyingType 에러 체인에서 가장 안쪽에 있는 AppError의 ErrorType을 반환합니다.
// AppError가 없으면 Unknown입니다.
//
// 예를 들어 fetcher의 Gateway 에러를 nina가 PreferenceUpdate로 감싸면
// Is(err, PreferenceUpdate)와 UnderlyingType(err) == Gateway가 모두 성립합니다.
func UnderlyingType(err error) ErrorType {
	t := Unknown
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok {
			t = appErr.errType
		}
	}
	return t
}
