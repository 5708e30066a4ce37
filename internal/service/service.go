// Package service 브리지를 구성하는 장기 실행 서비스의 공통 생명주기 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 백그라운드에서 동작하는 서비스의 생명주기 인터페이스입니다.
//
// Start는 서비스 고루틴을 띄운 뒤 즉시 반환하며, ctx가 취소되면 서비스는 정리 작업을 마치고
// wg.Done()을 호출해야 합니다. 호출자는 Start 호출 전에 wg.Add(1)을 수행합니다.
type Service interface {
	Start(ctx context.Context, wg *sync.WaitGroup) error
}
