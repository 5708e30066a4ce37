// Package testutil 여러 패키지의 테스트에서 공통으로 사용하는 헬퍼입니다.
package testutil

import (
	"fmt"
	"net"
	"testing"
	"time"
)

// FreeListenAddress 테스트용으로 사용 가능한 루프백 주소("127.0.0.1:port")를 반환합니다.
func FreeListenAddress(t testing.TB) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("사용 가능한 포트를 찾을 수 없습니다: %v", err)
	}
	defer l.Close()

	return l.Addr().String()
}

// WaitForServer 서버가 addr에서 연결을 받을 때까지 대기합니다.
func WaitForServer(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server did not start on %s within %v", addr, timeout)
}
