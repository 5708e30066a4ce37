// Package telegram 브리지의 두 줄 디스패치 프로토콜을 읽어 텔레그램 메시지로 전달하는 예제 소비자입니다.
//
// 1번째 줄(경보 요약)을 받으면 제목과 발행 기관을 즉시 보내고,
// 2번째 줄(이벤트 상세)을 받으면 독일어 설명, 행동 요령, 링크를 이어서 보냅니다.
package telegram

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/darkkaiser/warn-bridge/internal/service/alert"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

// MessageSender 메시지 1건을 전송합니다.
type MessageSender interface {
	Send(ctx context.Context, message string) error
}

// Consumer 표준 입력의 두 줄을 텔레그램 메시지로 바꿉니다.
type Consumer struct {
	sender      MessageSender
	lineTimeout time.Duration
	linkBaseURL string
}

// NewConsumer Consumer를 생성합니다. lineTimeout은 2번째 줄을 기다리는 최대 시간입니다.
func NewConsumer(sender MessageSender, lineTimeout time.Duration, linkBaseURL string) *Consumer {
	return &Consumer{
		sender:      sender,
		lineTimeout: lineTimeout,
		linkBaseURL: linkBaseURL,
	}
}

type lineResult struct {
	line []byte
	err  error
}

// readLines r에서 최대 두 줄을 읽어 채널로 보냅니다. 채널은 버퍼가 있어 읽는 쪽이 떠나도 막히지 않습니다.
func readLines(r io.Reader) <-chan lineResult {
	out := make(chan lineResult, 3)

	go func() {
		defer close(out)

		br := bufio.NewReader(r)
		for range 2 {
			line, err := br.ReadBytes('\n')
			if len(line) > 0 {
				out <- lineResult{line: line}
			}
			if err != nil {
				out <- lineResult{err: err}
				return
			}
		}
	}()

	return out
}

// Run 두 줄을 읽어 메시지를 전송합니다. 2번째 줄이 오지 않으면(EOF 또는 시간 초과) 1번째 메시지만 보내고 nil을 반환합니다.
func (c *Consumer) Run(ctx context.Context, r io.Reader) error {
	lines := readLines(r)

	// 1. 경보 요약
	first, ok := <-lines
	if !ok || first.err != nil {
		if first.err != nil && !errors.Is(first.err, io.EOF) {
			return first.err
		}
		return ErrEmptyInput
	}

	var a alert.PushAlert
	if err := json.Unmarshal(first.line, &a); err != nil {
		return newErrMalformedLine(1, err)
	}

	fields := applog.Fields{
		"alert_id": a.ID,
		"provider": a.ProviderName(),
	}
	applog.WithComponentAndFields(component, fields).Info("경보 요약 수신")

	sentHeadline := a.Headline != nil && *a.Headline != ""
	if sentHeadline {
		if err := c.sender.Send(ctx, formatAlert(&a)); err != nil {
			return err
		}
	}

	// 2. 이벤트 상세
	timer := time.NewTimer(c.lineTimeout)
	defer timer.Stop()

	var second lineResult
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		applog.WithComponentAndFields(component, fields).Warn("이벤트 상세를 기다리다 시간이 초과되었습니다")
		return nil
	case second, ok = <-lines:
	}

	if !ok || second.err != nil {
		applog.WithComponentAndFields(component, fields).Warn("이벤트 상세를 받지 못했습니다")
		return nil
	}

	detail, err := alert.ParseEvent(second.line, c.linkBaseURL)
	if err != nil {
		return newErrMalformedLine(2, err)
	}

	applog.WithComponentAndFields(component, fields).Info("이벤트 상세 수신")

	return c.sender.Send(ctx, formatEvent(detail, !sentHeadline))
}
