package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// EventKind tags the chat event variants the bot reacts to.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventPollAnswer
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventPollAnswer:
		return "poll_answer"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Sender is the uniform projection of who produced an event.
type Sender struct {
	ID       int64
	Username string
}

// Event is an inbound chat event.
type Event struct {
	Kind   EventKind
	User   Sender
	ChatID int64

	// EventText
	Text    string
	Command string

	// EventPollAnswer
	OptionIDs []int

	// EventCallback
	CallbackID   string
	CallbackData string
}

// EventFromUpdate converts a Telegram update into an Event.
// Updates of other kinds report false.
func EventFromUpdate(u tgbotapi.Update) (Event, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		cb := u.CallbackQuery
		ev := Event{
			Kind:         EventCallback,
			User:         Sender{ID: cb.From.ID, Username: cb.From.UserName},
			ChatID:       cb.From.ID,
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			ev.ChatID = cb.Message.Chat.ID
		}
		return ev, true

	case u.PollAnswer != nil:
		pa := u.PollAnswer
		return Event{
			Kind:      EventPollAnswer,
			User:      Sender{ID: pa.User.ID, Username: pa.User.UserName},
			ChatID:    pa.User.ID, // poll answers carry no chat; polls are sent to private chats
			OptionIDs: pa.OptionIDs,
		}, true

	case u.Message != nil && u.Message.From != nil && u.Message.Text != "":
		m := u.Message
		ev := Event{
			Kind:   EventText,
			User:   Sender{ID: m.From.ID, Username: m.From.UserName},
			ChatID: m.From.ID,
			Text:   m.Text,
		}
		if m.Chat != nil {
			ev.ChatID = m.Chat.ID
		}
		if m.IsCommand() {
			ev.Command = m.Command()
		}
		return ev, true
	}

	return Event{}, false
}
