// Package maputil 맵(Map) 데이터를 구조체로 변환하는 유틸리티 기능을 제공합니다.
//
// 푸시 전송 계층이 넘겨주는 자격 증명 blob(map[string]any)처럼 스키마가 느슨한 데이터에서
// 필요한 필드만 타입 안전하게 꺼내 쓰기 위해 사용합니다.
package maputil

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode 입력된 맵(Map)이나 인터페이스 데이터를 제네릭 타입 T의 구조체로 변환하여 반환합니다.
//
// 기본 동작:
//   - `json` 태그를 기준으로 필드를 매핑합니다.
//   - 유연한 타입 변환(Weakly Typed)을 허용합니다. ("123" -> 123)
//   - 구조체에 정의되지 않은 입력 필드는 무시합니다.
//
// 사용 예:
//
//	reg, err := maputil.Decode[registration](creds)
func Decode[T any](input any, opts ...Option) (*T, error) {
	output := new(T)
	if err := DecodeTo(input, output, opts...); err != nil {
		return nil, err
	}
	return output, nil
}

// DecodeTo 입력된 데이터를 output이 가리키는 구조체에 디코딩합니다.
// output에 이미 채워져 있는 값은 입력 데이터에 없는 한 유지됩니다.
func DecodeTo[T any](input any, output *T, opts ...Option) error {
	if output == nil {
		return errors.New("디코딩 결과를 저장할 output 포인터가 nil입니다")
	}

	cfg := &decodingConfig{
		tagName:          "json",
		weaklyTypedInput: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	hooks := append([]mapstructure.DecodeHookFunc{}, cfg.extraHooks...)
	hooks = append(hooks,
		mapstructure.TextUnmarshallerHookFunc(),
		stringToDurationHookFunc(),
	)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          cfg.tagName,
		WeaklyTypedInput: cfg.weaklyTypedInput,
		ErrorUnused:      cfg.errorUnused,
		Squash:           true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}

	return nil
}

type decodingConfig struct {
	tagName          string
	weaklyTypedInput bool
	errorUnused      bool
	extraHooks       []mapstructure.DecodeHookFunc
}

// Option 디코딩 설정을 커스터마이징하기 위한 함수형 옵션 타입입니다.
type Option func(*decodingConfig)

// WithTagName 구조체 필드 매핑에 사용할 태그 이름을 지정합니다. (기본값: "json")
func WithTagName(tagName string) Option {
	return func(c *decodingConfig) {
		c.tagName = tagName
	}
}

// WithWeaklyTypedInput 타입이 달라도 가능한 경우 자동으로 변환할지 설정합니다. (기본값: true)
func WithWeaklyTypedInput(enable bool) Option {
	return func(c *decodingConfig) {
		c.weaklyTypedInput = enable
	}
}

// WithErrorUnused 대상 구조체에 없는 필드가 입력에 존재하면 에러를 반환합니다. (기본값: false)
func WithErrorUnused(enable bool) Option {
	return func(c *decodingConfig) {
		c.errorUnused = enable
	}
}

// WithDecodeHook 기본 훅보다 먼저 실행될 사용자 정의 변환 훅을 추가합니다.
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(c *decodingConfig) {
		c.extraHooks = append(c.extraHooks, hooks...)
	}
}
