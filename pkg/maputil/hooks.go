package maputil

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// stringToDurationHookFunc "30s" 같은 문자열을 time.Duration으로 변환하는 훅입니다.
//
// 정확히 time.Duration 타입인 필드만 변환하며, 파싱에 실패하면 기본 디코딩 로직에 맡깁니다.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		d, err := time.ParseDuration(strings.TrimSpace(reflect.ValueOf(data).String()))
		if err != nil {
			return data, nil
		}

		return d, nil
	}
}
