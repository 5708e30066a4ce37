package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/pkg/cronx"
	"github.com/go-playground/validator/v10"
)

var (
	// validate 패키지 전역에서 공유하는 Validator 인스턴스 (내부 캐시를 재사용하기 위해 1회만 생성)
	validate = newValidator()

	// 텔레그램 봇 토큰 검증을 위한 정규식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)
)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 Go 필드명(예: MaxRetries) 대신 JSON 이름(예: max_retries)을 보여주도록 설정합니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"duration":           validateDuration,
		"cron_spec":          validateCronSpec,
		"telegram_bot_token": validateTelegramBotToken,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("초기화 치명적 오류: '%s' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", tag, err))
		}
	}

	return v
}

// validateDuration time.ParseDuration으로 해석 가능한 양수 기간 문자열인지 검증합니다. (예: 500ms, 20s)
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// validateCronSpec 초 단위를 포함하는 6필드 Cron 표현식인지 검증합니다.
func validateCronSpec(fl validator.FieldLevel) bool {
	return cronx.Validate(fl.Field().String()) == nil
}

// validateTelegramBotToken 입력된 문자열이 텔레그램 봇 토큰 형식인지 검증합니다.
func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// checkStruct 구조체 인스턴스를 태그 규칙에 따라 검증하고, 첫 번째 오류를 사용자 친화적인 도메인 에러로 변환합니다.
func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	firstErr := validationErrors[0]
	// Namespace는 "AppConfig.http.timeout" 형태이므로 루트 구조체 이름을 제거합니다.
	field := firstErr.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch firstErr.Tag() {
	case "required":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: 필수 설정 항목(%s)이 비어 있습니다", contextName, field))
	case "duration":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: 시간 설정(%s)이 올바르지 않습니다: '%v' (예: 500ms, 20s)", contextName, field, firstErr.Value()))
	case "cron_spec":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: 스케줄(%s) 표현식이 올바르지 않습니다: '%v' (예: 0 0 4 * * *)", contextName, field, firstErr.Value()))
	case "http_url":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: URL 설정(%s)이 올바르지 않습니다: '%v'", contextName, field, firstErr.Value()))
	case "hostname_port":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: 수신 주소(%s)는 host:port 형식이어야 합니다: '%v'", contextName, field, firstErr.Value()))
	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s: 텔레그램 BotToken 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)", contextName))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s, 값: '%v')", contextName, field, firstErr.Tag(), firstErr.Value()))
}
