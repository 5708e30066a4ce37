package fetcher

import (
	"io"
)

// maxDrainBytes 커넥션 재사용을 위해 응답 본문을 비울 때 읽을 최대 바이트 수 (64KB)
const maxDrainBytes = 64 * 1024

// drainAndCloseBody HTTP Keep-Alive 커넥션 재사용을 위해 응답 본문을 일정량 읽어서 버린 후 닫습니다.
//
// maxDrainBytes를 초과하는 본문을 가진 커넥션은 재사용되지 않고 닫힙니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}
