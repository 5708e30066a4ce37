// Package transport 푸시 메시지 전송 계층의 계약을 정의합니다.
//
// 전송 계층은 푸시 토큰을 발급하고(Register), 수신한 푸시 페이로드를 콜백으로 전달하며(Start),
// 자격 증명이 회전될 때마다 OnCredentialsRotated로 등록된 콜백을 호출합니다.
package transport

import (
	"context"
)

// Credentials 전송 계층이 소유하는 불투명한 자격 증명 객체입니다.
type Credentials = map[string]any

// MessageHandler 수신한 푸시 페이로드 원문 1건을 처리합니다.
type MessageHandler func(ctx context.Context, payload []byte) error

// CredentialsRotatedFunc 자격 증명 회전 시 호출됩니다. 인자는 병합되지 않은 전체 자격 증명입니다.
type CredentialsRotatedFunc func(creds Credentials) error

// Transport 푸시 전송 계층 인터페이스입니다.
type Transport interface {
	// Register 푸시 토큰을 반환합니다. 토큰이 준비될 때까지 ctx 범위 안에서 대기할 수 있습니다.
	Register(ctx context.Context) (string, error)

	// Start 이후 수신하는 푸시 페이로드를 handler로 전달합니다.
	Start(ctx context.Context, handler MessageHandler) error

	OnCredentialsRotated(fn CredentialsRotatedFunc)
}
