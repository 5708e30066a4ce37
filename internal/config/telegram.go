package config

import (
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

const (
	// TelegramAppName 디스패치 프로토콜을 텔레그램 메시지로 전달하는 예제 소비자의 식별자입니다.
	TelegramAppName = "warn-telegram"

	// TelegramEnvPrefix 텔레그램 소비자 설정을 덮어쓰는 환경 변수의 접두사입니다.
	// 예: WARN_TELEGRAM_BOT_TOKEN, WARN_TELEGRAM_CHAT_ID
	TelegramEnvPrefix = "WARN_TELEGRAM_"
)

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`

	// LineTimeout 1번째 줄을 받은 뒤 2번째 줄(이벤트 상세)을 기다리는 최대 시간
	LineTimeout string `json:"line_timeout" validate:"required,duration"`
}

// LineTimeoutDuration 검증을 통과한 LineTimeout 값을 time.Duration으로 반환합니다.
func (c TelegramConfig) LineTimeoutDuration() time.Duration {
	return mustParseDuration(c.LineTimeout)
}

// LoadTelegram 텔레그램 소비자 설정을 기본값, 설정 파일, 환경 변수 순으로 로드합니다.
func LoadTelegram(filename string) (*TelegramConfig, error) {
	defaults := TelegramConfig{
		LineTimeout: "2m",
	}

	var c TelegramConfig
	if err := loadLayers(&c, defaults, filename, TelegramAppName+".json", TelegramEnvPrefix, nil); err != nil {
		return nil, err
	}

	if err := checkStruct(validate, &c, "TelegramConfig"); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 설정 유효성 검증에 실패했습니다")
	}

	return &c, nil
}
