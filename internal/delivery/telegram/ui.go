package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

const menuColumns = 2

// buildStartKeyboard builds the start menu: sections and emergency in one row,
// plus the statistics entry for admins.
func buildStartKeyboard(sections []entities.Section, emergencyTitle string, admin bool) tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, s := range sections {
		row = append(row, tgbotapi.NewKeyboardButton(s.Title))
	}
	if emergencyTitle != "" {
		row = append(row, tgbotapi.NewKeyboardButton(emergencyTitle))
	}

	var rows [][]tgbotapi.KeyboardButton
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if admin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnShowStats)))
	}
	return newReplyKeyboard(rows)
}

// buildListKeyboard lays titles out in columns and appends the home button.
func buildListKeyboard(titles []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(titles); i += menuColumns {
		end := min(i+menuColumns, len(titles))
		var row []tgbotapi.KeyboardButton
		for _, t := range titles[i:end] {
			row = append(row, tgbotapi.NewKeyboardButton(t))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHome)))
	return newReplyKeyboard(rows)
}

// buildStatsKeyboard builds the admin statistics menu.
func buildStatsKeyboard(savedPolls []string) tgbotapi.ReplyKeyboardMarkup {
	titles := []string{btnTotalClicks, btnCompletions}
	for _, name := range savedPolls {
		titles = append(titles, statsPrefix+name)
	}
	return buildListKeyboard(titles)
}

// buildNextKeyboard builds the inline button shown under an answer comment.
func buildNextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnNext, buildNextCallback()),
		),
	)
}

func newReplyKeyboard(rows [][]tgbotapi.KeyboardButton) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
