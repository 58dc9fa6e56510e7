package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromUpdate(t *testing.T) {
	t.Run("command", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{
			Message: &tgbotapi.Message{
				From:     &tgbotapi.User{ID: 5, UserName: "alice"},
				Chat:     &tgbotapi.Chat{ID: 500},
				Text:     "/start",
				Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
			},
		})
		require.True(t, ok)
		assert.Equal(t, EventText, ev.Kind)
		assert.Equal(t, "start", ev.Command)
		assert.Equal(t, Sender{ID: 5, Username: "alice"}, ev.User)
		assert.Equal(t, int64(500), ev.ChatID)
	})

	t.Run("menu button", func(t *testing.T) {
		ev, ok := EventFromUpdate(textUpdate(5, btnHome))
		require.True(t, ok)
		assert.Empty(t, ev.Command)
		assert.Equal(t, btnHome, ev.Text)
	})

	t.Run("poll answer", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{
			PollAnswer: &tgbotapi.PollAnswer{
				PollID:    "p",
				User:      tgbotapi.User{ID: 9, UserName: "bob"},
				OptionIDs: []int{2},
			},
		})
		require.True(t, ok)
		assert.Equal(t, EventPollAnswer, ev.Kind)
		assert.Equal(t, int64(9), ev.ChatID)
		assert.Equal(t, []int{2}, ev.OptionIDs)
	})

	t.Run("callback", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{
			CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb1",
				From:    &tgbotapi.User{ID: 3},
				Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 300}},
				Data:    actionNext,
			},
		})
		require.True(t, ok)
		assert.Equal(t, EventCallback, ev.Kind)
		assert.Equal(t, "cb1", ev.CallbackID)
		assert.Equal(t, int64(300), ev.ChatID)
		assert.Equal(t, actionNext, decodeCallback(ev.CallbackData).Action)
	})

	t.Run("ignored", func(t *testing.T) {
		_, ok := EventFromUpdate(tgbotapi.Update{UpdateID: 1})
		assert.False(t, ok)

		_, ok = EventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}}})
		assert.False(t, ok)
	})
}
