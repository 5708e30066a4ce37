package telegram

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/service/alert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSender) Send(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, message)
	return nil
}

const (
	alertLine = `{"id":"mow.DE-NW-BN-SE030-20260101-30-001","msgType":"Alert","headline":"Gefahr <Hochwasser>","provider":"MOWAS","severity":"Severe","event_code":"BBK-EVC-001"}` + "\n"
	eventLine = `{"identifier":"mow.DE-NW-BN-SE030-20260101-30-001","info":[{"language":"DE","headline":"Gefahr Hochwasser","description":"Pegel steigt & steigt","instruction":"Keller meiden"}]}` + "\n"
)

func TestConsumer_TwoLines(t *testing.T) {
	sender := &recordingSender{}
	c := NewConsumer(sender, time.Second, alert.DefaultLinkBaseURL)

	require.NoError(t, c.Run(context.Background(), strings.NewReader(alertLine+eventLine)))

	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.messages[0], "Gefahr &lt;Hochwasser&gt;")
	assert.Contains(t, sender.messages[0], "MOWAS")
	assert.Contains(t, sender.messages[0], "Severe")

	assert.Contains(t, sender.messages[1], "Pegel steigt &amp; steigt")
	assert.Contains(t, sender.messages[1], "Keller meiden")
	assert.Contains(t, sender.messages[1], alert.DefaultLinkBaseURL+"mow.DE-NW-BN-SE030-20260101-30-001")
	assert.NotContains(t, sender.messages[1], "Gefahr Hochwasser", "요약에서 이미 제목을 보냈습니다")
}

func TestConsumer_HeadlineFromEventWhenSummaryHasNone(t *testing.T) {
	sender := &recordingSender{}
	c := NewConsumer(sender, time.Second, "")

	require.NoError(t, c.Run(context.Background(), strings.NewReader(`{"id":"x"}`+"\n"+eventLine)))

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "<b>Gefahr Hochwasser</b>")
}

func TestConsumer_SecondLineMissing(t *testing.T) {
	t.Run("EOF", func(t *testing.T) {
		sender := &recordingSender{}
		c := NewConsumer(sender, time.Second, "")

		require.NoError(t, c.Run(context.Background(), strings.NewReader(alertLine)))
		assert.Len(t, sender.messages, 1)
	})

	t.Run("시간 초과", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()

		sender := &recordingSender{}
		c := NewConsumer(sender, 30*time.Millisecond, "")

		go func() { _, _ = pw.Write([]byte(alertLine)) }()

		require.NoError(t, c.Run(context.Background(), pr))
		assert.Len(t, sender.messages, 1)
	})
}

func TestConsumer_Errors(t *testing.T) {
	t.Run("빈 입력", func(t *testing.T) {
		err := NewConsumer(&recordingSender{}, time.Second, "").Run(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("1번째 줄 해석 실패", func(t *testing.T) {
		err := NewConsumer(&recordingSender{}, time.Second, "").Run(context.Background(), strings.NewReader("not json\n"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
	})

	t.Run("2번째 줄 해석 실패", func(t *testing.T) {
		sender := &recordingSender{}
		err := NewConsumer(sender, time.Second, "").Run(context.Background(), strings.NewReader(alertLine+"{broken\n"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
		assert.Len(t, sender.messages, 1)
	})
}
