// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

// Menu buttons.
const (
	btnHome        = "В начало"
	btnNext        = "Далее"
	btnShowStats   = "Показать статистику"
	btnTotalClicks = "Общее число кликов"
	btnCompletions = "Завершения"
	btnResetStats  = "Сбросить статистику"
	statsPrefix    = "Статистика: "
)

const (
	msgStartMenu         = "Выбери раздел:"
	msgChooseArticle     = "Выбери ситуацию:"
	msgStatsMenu         = "Выбери статистику:"
	msgPollIntro         = "Отвечай на вопросы, выбирая вариант, который ближе всего к тебе\\. В конце покажем итоги\\."
	msgUnknownCommand    = "Не понимаю эту команду\\. Воспользуйся меню\\."
	msgSessionExpired    = "Этот опрос уже не активен\\. Начни заново из меню\\."
	msgPollNotFound      = "Такой опрос больше не доступен\\."
	msgInternalError     = "Что‑то пошло не так. Попробуйте позже."
	msgResetDisabled     = "Сброс статистики отключён."
	msgArchiveDisabled   = "Архив завершений не подключён."
	msgNoCompletions     = "Завершённых опросов пока нет."
	msgNoSavedPolls      = "Статистики пока нет."
	msgDefaultComment    = "отлично\\!"
	msgQuizExcellent     = "Отличный результат\\! Ты хорошо разбираешься в цифровой безопасности\\."
	msgQuizNeedsPractice = "Есть над чем поработать\\. Загляни в разделы самоаудита, чтобы подтянуть знания\\."
)

const (
	// messageLimit keeps chunks under Telegram's 4096 character cap.
	messageLimit = 4000
	// transcriptSeparator separates answered questions in a transcript.
	transcriptSeparator = "\n \n \n"
	// excellentShare is the score share above which a quiz result is excellent.
	excellentShare = 0.7
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newPollConfig builds a non-anonymous chat poll from a prompt.
func newPollConfig(chatID int64, p *service.Prompt) tgbotapi.SendPollConfig {
	cfg := tgbotapi.NewPoll(chatID, p.Question, p.Options...)
	cfg.IsAnonymous = false
	cfg.Type = "regular"
	if p.Quiz {
		cfg.Type = "quiz"
		cfg.CorrectOptionID = int64(p.CorrectOption)
	}
	return cfg
}

// formatQuizResult renders the score of a finished quiz with its verdict.
func formatQuizResult(r *service.Result) string {
	verdict := msgQuizNeedsPractice
	if float64(r.Score) > float64(r.Total)*excellentShare {
		verdict = msgQuizExcellent
	}
	return fmt.Sprintf("Твой результат: %s из %s\n\n%s", bold(fmt.Sprint(r.Score)), bold(fmt.Sprint(r.Total)), verdict)
}

// formatTranscript renders every answered question with its comment.
func formatTranscript(r *service.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Твой результат: %d из %d \n\n", r.Score, r.Total)
	for _, e := range r.Transcript {
		comment := e.Comment
		if comment == "" {
			comment = msgDefaultComment
		}
		fmt.Fprintf(&b, "\n%s \n\n*Твой ответ*: %s \n\n*Наш комментарий*: %s%s",
			e.Question, e.Answer, comment, transcriptSeparator)
	}
	return b.String()
}

// formatPollReport renders answer counts of a poll as plain text.
func formatPollReport(stats *service.PollStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Опрос: %s\n", stats.Poll.Name)

	for level, q := range stats.Poll.Questions {
		fmt.Fprintf(&b, "\n%s\n", q.Text)
		if !stats.Report.Answered(level) {
			b.WriteString("ответов не было\n")
			continue
		}
		b.WriteString("количество ответов:     ответ\n")

		counts := stats.Report[level]
		numbers := make([]int, 0, len(counts))
		for n := range counts {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		for _, n := range numbers {
			text := fmt.Sprintf("вариант %d", n)
			if a, ok := q.Answer(n); ok {
				text = a.Text
			}
			fmt.Fprintf(&b, "   %d:    %s\n", counts[n], text)
		}
	}
	return b.String()
}

func formatTotalAnswers(total int64) string {
	return fmt.Sprintf("Всего ответов: %d", total)
}

func formatCompletions(counts []entities.CompletionCount) string {
	if len(counts) == 0 {
		return msgNoCompletions
	}
	var b strings.Builder
	b.WriteString("Завершено опросов:\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "%s: %d\n", c.PollName, c.Count)
	}
	return b.String()
}

// splitMessage cuts text into chunks of at most limit runes,
// preferring to break at sep. Blank chunks are dropped.
func splitMessage(text, sep string, limit int) []string {
	var parts []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}

	for text != "" {
		r := []rune(text)
		if len(r) <= limit {
			add(strings.TrimSuffix(text, sep))
			break
		}

		head := string(r[:limit])
		cut := strings.LastIndex(head, sep)
		if cut <= 0 {
			add(head)
			text = string(r[limit:])
			continue
		}
		add(head[:cut])
		text = text[cut+len(sep):]
	}
	return parts
}
