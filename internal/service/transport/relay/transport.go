// Package relay 외부 FCM 수신기(릴레이) 프로세스와 로컬 HTTP로 통신하는 푸시 전송 계층 구현입니다.
//
// 릴레이는 GET /v1/registration으로 FCM 등록 정보를 받아 FCM에 등록하고,
// PUT /v1/credentials로 자격 증명(푸시 토큰 포함)을 브리지에 전달하며,
// 수신한 푸시 메시지를 POST /v1/messages로 전달합니다.
package relay

import (
	"context"
	"sync"

	"github.com/darkkaiser/warn-bridge/internal/service/nina"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/darkkaiser/warn-bridge/pkg/maputil"
)

// component 릴레이 전송 계층 로깅용 컴포넌트 이름
const component = "transport.relay"

// Registration 릴레이가 FCM에 등록할 때 필요한 정보입니다.
type Registration struct {
	ProjectID string `json:"projectId"`
	AppID     string `json:"appId"`
	APIKey    string `json:"apiKey"`
	SenderID  string `json:"senderId"`
}

// credentialsToken 자격 증명 객체에서 푸시 토큰 위치
type credentialsToken struct {
	FCM struct {
		Registration struct {
			Token string `json:"token"`
		} `json:"registration"`
	} `json:"fcm"`
	Token string `json:"token"`
}

// Transport 릴레이 기반 전송 계층입니다.
type Transport struct {
	registration Registration

	mu          sync.Mutex
	credentials transport.Credentials
	onRotated   transport.CredentialsRotatedFunc
	handler     transport.MessageHandler

	// updated 자격 증명이 갱신될 때마다 닫히고 새 채널로 교체됩니다.
	updated chan struct{}
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ transport.Transport = (*Transport)(nil)

// New 원격 설정과 저장된 자격 증명으로 Transport를 생성합니다.
func New(rc *nina.RemoteConfig, creds transport.Credentials) *Transport {
	if creds == nil {
		creds = transport.Credentials{}
	}

	return &Transport{
		registration: Registration{
			ProjectID: rc.ProjectID,
			AppID:     rc.AppID,
			APIKey:    rc.APIKey,
			SenderID:  rc.SenderID,
		},
		credentials: creds,
		updated:     make(chan struct{}),
	}
}

// Registration 릴레이에 제공할 FCM 등록 정보를 반환합니다.
func (t *Transport) Registration() Registration {
	return t.registration
}

// Register 자격 증명에 들어 있는 푸시 토큰을 반환합니다.
// 토큰이 없으면 릴레이가 자격 증명을 전달할 때까지 ctx 범위 안에서 기다립니다.
func (t *Transport) Register(ctx context.Context) (string, error) {
	waiting := false
	for {
		t.mu.Lock()
		token := tokenOf(t.credentials)
		updated := t.updated
		t.mu.Unlock()

		if token != "" {
			applog.WithComponentAndFields(component, applog.Fields{
				"token": applog.MaskSensitiveData(token),
			}).Info("푸시 토큰 확보")

			return token, nil
		}

		if !waiting {
			applog.WithComponent(component).Info("릴레이가 자격 증명을 전달할 때까지 대기합니다")
			waiting = true
		}

		select {
		case <-ctx.Done():
			return "", newErrRegisterCanceled(ctx.Err())
		case <-updated:
		}
	}
}

// Start 이후 전달되는 푸시 메시지를 handler로 넘깁니다.
func (t *Transport) Start(_ context.Context, handler transport.MessageHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler != nil {
		return ErrAlreadyStarted
	}
	t.handler = handler

	applog.WithComponent(component).Info("푸시 메시지 수신 시작")

	return nil
}

// OnCredentialsRotated 자격 증명 회전 시 호출할 콜백을 등록합니다.
func (t *Transport) OnCredentialsRotated(fn transport.CredentialsRotatedFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onRotated = fn
}

// UpdateCredentials 자격 증명을 통째로 교체하고 회전 콜백을 호출합니다.
func (t *Transport) UpdateCredentials(creds transport.Credentials) error {
	if creds == nil {
		creds = transport.Credentials{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.onRotated != nil {
		if err := t.onRotated(creds); err != nil {
			return newErrCredentialsRejected(err)
		}
	}

	t.credentials = creds
	close(t.updated)
	t.updated = make(chan struct{})

	applog.WithComponentAndFields(component, applog.Fields{
		"has_token": tokenOf(creds) != "",
	}).Info("자격 증명이 갱신되었습니다")

	return nil
}

// Deliver 푸시 페이로드 1건을 등록된 handler로 전달합니다.
func (t *Transport) Deliver(ctx context.Context, payload []byte) error {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	if handler == nil {
		return ErrNotListening
	}
	return handler(ctx, payload)
}

// tokenOf 자격 증명에서 fcm.registration.token 또는 최상위 token 값을 찾습니다.
func tokenOf(creds transport.Credentials) string {
	if len(creds) == 0 {
		return ""
	}

	decoded, err := maputil.Decode[credentialsToken](creds)
	if err != nil {
		return ""
	}
	if decoded.FCM.Registration.Token != "" {
		return decoded.FCM.Registration.Token
	}
	return decoded.Token
}
