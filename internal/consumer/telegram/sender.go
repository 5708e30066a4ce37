package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/darkkaiser/warn-bridge/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// component 텔레그램 소비자 로깅용 컴포넌트 이름
	component = "consumer.telegram"

	// messageMaxLength 텔레그램 메시지 1건의 최대 길이 (바이트 기준으로 보수적으로 적용)
	messageMaxLength = 4096

	defaultHTTPTimeout = 30 * time.Second
	defaultRetryDelay  = 2 * time.Second
	maxSendAttempts    = 3
)

// botClient 메시지 전송에 필요한 텔레그램 봇 API 기능입니다.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender 텔레그램 채팅방 하나로 HTML 메시지를 전송합니다.
type Sender struct {
	bot    botClient
	chatID int64

	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewSender 봇 토큰으로 텔레그램 봇 API 클라이언트를 초기화합니다.
func NewSender(botToken string, chatID int64, debug bool) (*Sender, error) {
	client := &http.Client{Timeout: defaultHTTPTimeout}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, newErrBotInit(err)
	}
	bot.Debug = debug

	applog.WithComponentAndFields(component, applog.Fields{
		"bot":       bot.Self.UserName,
		"bot_token": applog.MaskSensitiveData(botToken),
		"chat_id":   chatID,
	}).Debug("텔레그램 봇 API 클라이언트 초기화 완료")

	return newSenderWithBot(bot, chatID), nil
}

func newSenderWithBot(bot botClient, chatID int64) *Sender {
	return &Sender{
		bot:    bot,
		chatID: chatID,

		// 같은 채팅방에는 초당 1건 정도로 보냅니다.
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
		retryDelay: defaultRetryDelay,
	}
}

// Send HTML 메시지를 전송합니다. 최대 길이를 넘으면 여러 건으로 나누어 보냅니다.
func (s *Sender) Send(ctx context.Context, message string) error {
	for _, chunk := range strutil.SplitChunks(message, messageMaxLength) {
		if err := s.sendSingle(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) sendSingle(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(s.chatID, message)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		_, lastErr = s.bot.Send(msg)
		if lastErr == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": s.chatID,
				"attempt": attempt,
			}).Debug("텔레그램 메시지 전송 성공")
			return nil
		}

		code, retryAfter := telegramErrorCode(lastErr)
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id":    s.chatID,
			"attempt":    attempt,
			"error_code": code,
			"error":      lastErr,
		}).Warn("텔레그램 메시지 전송 실패")

		if !shouldRetry(code) || attempt == maxSendAttempts {
			break
		}

		wait := s.retryDelay
		if retryAfter > 0 {
			wait = time.Duration(retryAfter) * time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return newErrSendFailed(lastErr)
}

// telegramErrorCode 텔레그램 API 에러에서 에러 코드와 Retry-After 값을 꺼냅니다.
func telegramErrorCode(err error) (code int, retryAfter int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return apiErrValue.Code, apiErrValue.ResponseParameters.RetryAfter
	}
	return 0, 0
}

// shouldRetry 4xx 중에서는 429만 재시도합니다.
func shouldRetry(code int) bool {
	if code >= 400 && code < 500 {
		return code == http.StatusTooManyRequests
	}
	return true
}
