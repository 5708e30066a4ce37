// Package cronx robfig/cron 기반 스케줄 표현식의 공통 파서와 검증 함수를 제공합니다.
package cronx

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// StandardParser 애플리케이션의 표준 Cron 표현식 파서를 반환합니다.
//
// 초 단위를 포함하는 6필드 형식([초] [분] [시] [일] [월] [요일])과
// @daily, @every <duration> 같은 Descriptor를 지원하며, 표준 5필드 형식은 지원하지 않습니다.
//
// 예시:
//   - "0 0 4 * * *" : 매일 04:00:00
//   - "@every 6h"   : 6시간마다
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Validate 표준 파서로 해석할 수 없는 Cron 표현식이면 에러를 반환합니다.
func Validate(spec string) error {
	if _, err := StandardParser().Parse(spec); err != nil {
		return fmt.Errorf("Cron 표현식 파싱 실패 ('%s'): %w", spec, err)
	}
	return nil
}
