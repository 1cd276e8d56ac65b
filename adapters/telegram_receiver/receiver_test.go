package telegram_receiver_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaire/ares/adapters/telegram_receiver"
	"github.com/jdelaire/ares/core"
)

func TestDecodeTextMessage(t *testing.T) {
	body := `{
		"update_id": 100,
		"message": {
			"message_id": 1,
			"from": {"id": 42, "is_bot": false, "first_name": "Kratos"},
			"chat": {"id": 123, "type": "private"},
			"date": 1700000000,
			"text": "/predict a b"
		}
	}`

	msg, ok, err := telegram_receiver.Decoder{}.Decode([]byte(body))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.InboundMessage{
		UpdateID:  100,
		ChatID:    123,
		UserID:    42,
		Text:      "/predict a b",
		Timestamp: time.Unix(1700000000, 0),
	}, msg)
}

func TestDecodeWithoutMessage(t *testing.T) {
	bodies := []string{
		`{"update_id": 1}`,
		`{"update_id": 2, "edited_message": {"message_id": 1, "chat": {"id": 1, "type": "private"}, "date": 0, "text": "/start"}}`,
		`{"update_id": 3, "message": {"message_id": 1, "chat": {"id": 1, "type": "private"}, "date": 0}}`,
	}
	for _, body := range bodies {
		_, ok, err := telegram_receiver.Decoder{}.Decode([]byte(body))
		require.NoError(t, err, body)
		assert.False(t, ok, body)
	}
}

func TestDecodeMissingSender(t *testing.T) {
	body := `{"update_id": 5, "message": {"message_id": 1, "chat": {"id": -100, "type": "channel"}, "date": 0, "text": "/start"}}`
	msg, ok, err := telegram_receiver.Decoder{}.Decode([]byte(body))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(0), msg.UserID)
	assert.Equal(t, int64(-100), msg.ChatID)
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, _, err := telegram_receiver.Decoder{}.Decode([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode update")
}

// --- long polling ---

type fakeSource struct {
	mu      sync.Mutex
	batches [][]tgbotapi.Update
	errs    []error
	offsets []int
	cancel  context.CancelFunc
}

func (f *fakeSource) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, cfg.Offset)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	if len(f.batches) == 0 {
		f.cancel()
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func textUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			From:      &tgbotapi.User{ID: 42},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Date:      int(time.Now().Unix()),
			Text:      text,
		},
	}
}

func TestPollSuccess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := &fakeSource{
		batches: [][]tgbotapi.Update{
			{textUpdate(100, 123, "/status"), {UpdateID: 101}},
			{textUpdate(102, 123, "/start")},
		},
		cancel: cancel,
	}

	var received []core.InboundMessage
	handler := func(msg core.InboundMessage) { received = append(received, msg) }

	err := telegram_receiver.New(src, handler, zerolog.Nop()).Start(ctx)
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Equal(t, "/status", received[0].Text)
	assert.Equal(t, int64(123), received[0].ChatID)
	assert.Equal(t, int64(42), received[0].UserID)
	assert.Equal(t, int64(100), received[0].UpdateID)
	assert.Equal(t, "/start", received[1].Text)
	assert.Equal(t, []int{0, 102, 103}, src.offsets)
}

func TestPollRetriesAfterError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := &fakeSource{
		errs:    []error{errors.New("bad gateway")},
		batches: [][]tgbotapi.Update{{textUpdate(7, 1, "/start")}},
		cancel:  cancel,
	}

	var count int
	recv := telegram_receiver.New(src, func(core.InboundMessage) { count++ }, zerolog.Nop()).
		WithBackoff(time.Millisecond)
	require.NoError(t, recv.Start(ctx))

	assert.Equal(t, 1, count)
	assert.Equal(t, []int{0, 0, 8}, src.offsets)
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{cancel: cancel}
	err := telegram_receiver.New(src, func(core.InboundMessage) {}, zerolog.Nop()).Start(ctx)
	assert.NoError(t, err)
	assert.Empty(t, src.offsets)
}
