package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartShowsMenu(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), textEvent(testUser, "alice", "/start"))

	msg := lastMessage(t, env.bot.take())
	assert.Equal(t, msgStartMenu, msg.Text)

	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.Keyboard, 1)
	require.Len(t, kb.Keyboard[0], 3)
	assert.Equal(t, "Проверь себя (Quiz)", kb.Keyboard[0][0].Text)
	assert.Equal(t, "Самоаудит", kb.Keyboard[0][1].Text)
	assert.Equal(t, "Критические ситуации", kb.Keyboard[0][2].Text)
}

func TestAdminStartMenuHasStats(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), textEvent(testAdmin, "Boss", btnHome))

	kb, ok := lastMessage(t, env.bot.take()).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, btnShowStats, kb.Keyboard[1][0].Text)
}

func TestSelfCheckDialogue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Самоаудит"))
	sub := lastMessage(t, env.bot.take())
	assert.Equal(t, "Выбери тему:", sub.Text)

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Self-check"))
	sent := env.bot.take()
	assert.Equal(t, []string{msgPollIntro}, sentTexts(sent))
	ps := sentPolls(sent)
	require.Len(t, ps, 1)
	assert.Equal(t, "Q0", ps[0].Question)
	assert.Equal(t, []string{"yes", "no"}, ps[0].Options)
	assert.Equal(t, "regular", ps[0].Type)
	assert.False(t, ps[0].IsAnonymous)

	// commented answer waits for "next"
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	comment := lastMessage(t, env.bot.take())
	assert.Equal(t, "✅ correct", comment.Text)
	_, ok := comment.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.True(t, ok)

	env.h.HandleEvent(ctx, nextEvent(testUser))
	ps = sentPolls(env.bot.take())
	require.Len(t, ps, 1)
	assert.Equal(t, "Q1", ps[0].Question)
	require.Len(t, env.bot.requests, 1)

	// answer without comment moves straight to the results
	env.h.HandleEvent(ctx, answerEvent(testUser, 1))
	sent = env.bot.take()
	got := sentTexts(sent)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "Твой результат: 1 из 2")
	assert.Contains(t, got[0], "*Наш комментарий*: ✅ correct")
	assert.Contains(t, got[0], "*Наш комментарий*: "+msgDefaultComment)
	assert.Equal(t, msgStartMenu, got[1])

	report, err := env.stats.PollReport(ctx, "Self-check")
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Report[0][1])
	assert.Equal(t, int64(1), report.Report[1][2])

	// session is idle again
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	assert.Equal(t, msgSessionExpired, sentTexts(env.bot.take())[0])
}

func TestQuizDialogue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Проверь себя (Quiz)"))
	sent := env.bot.take()
	assert.Equal(t, []string{"Начнём квиз\\!"}, sentTexts(sent))
	ps := sentPolls(sent)
	require.Len(t, ps, 1)
	assert.Equal(t, "quiz", ps[0].Type)
	assert.Equal(t, int64(0), ps[0].CorrectOptionID)
	assert.Len(t, ps[0].Options, 3)

	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	assert.Equal(t, "✅ Верно\\!", lastMessage(t, env.bot.take()).Text)

	env.h.HandleEvent(ctx, nextEvent(testUser))
	require.Len(t, sentPolls(env.bot.take()), 1)

	env.h.HandleEvent(ctx, answerEvent(testUser, 1))
	got := sentTexts(env.bot.take())
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "Твой результат: *1* из *2*")
	assert.Contains(t, got[0], msgQuizNeedsPractice)
	assert.Equal(t, "Спасибо\\!", got[1])
	assert.Equal(t, msgStartMenu, got[2])
}

func TestAnswerWithoutPollIsDiscarded(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), answerEvent(testUser, 0))

	assert.Equal(t, []string{msgSessionExpired, msgStartMenu}, sentTexts(env.bot.take()))
}

func TestRetractedVoteIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Self-check"))
	env.bot.take()

	env.h.HandleEvent(ctx, answerEvent(testUser))
	assert.Empty(t, env.bot.take())
}

func TestNextWithoutPollIsIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), nextEvent(testUser))

	assert.Empty(t, env.bot.take())
	assert.Len(t, env.bot.requests, 1)
}

func TestUnknownText(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), textEvent(testUser, "", "hello"))

	assert.Equal(t, []string{msgUnknownCommand, msgStartMenu}, sentTexts(env.bot.take()))
}

func TestStatsAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleEvent(context.Background(), textEvent(testUser, "alice", btnShowStats))

	assert.Equal(t, msgUnknownCommand, sentTexts(env.bot.take())[0])
}

func TestAdminStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Self-check"))
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	env.bot.take()

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", btnShowStats))
	menu := lastMessage(t, env.bot.take())
	assert.Equal(t, msgStatsMenu, menu.Text)
	kb, ok := menu.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, btnTotalClicks, kb.Keyboard[0][0].Text)
	assert.Equal(t, btnCompletions, kb.Keyboard[0][1].Text)
	assert.Equal(t, statsPrefix+"Self-check", kb.Keyboard[1][0].Text)

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", btnTotalClicks))
	assert.Equal(t, []string{"Всего ответов: 1"}, sentTexts(env.bot.take()))

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", statsPrefix+"Self-check"))
	report := sentTexts(env.bot.take())
	require.Len(t, report, 1)
	assert.Contains(t, report[0], "Опрос: Self-check")
	assert.Contains(t, report[0], "   1:    yes")
	assert.Contains(t, report[0], "ответов не было")

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", statsPrefix+"Missing"))
	assert.Equal(t, []string{msgPollNotFound}, sentTexts(env.bot.take()))

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", btnResetStats))
	assert.Equal(t, []string{msgResetDisabled}, sentTexts(env.bot.take()))

	env.h.HandleEvent(ctx, textEvent(testAdmin, "boss", btnCompletions))
	assert.Equal(t, []string{msgArchiveDisabled}, sentTexts(env.bot.take()))
}

func TestEmergencyArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Критические ситуации"))
	menu := lastMessage(t, env.bot.take())
	assert.Equal(t, msgChooseArticle, menu.Text)

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Телефон потерян"))
	sent := env.bot.take()
	require.NotEmpty(t, sent)
	_, ok := sent[0].(tgbotapi.AnimationConfig)
	assert.True(t, ok)
	assert.Equal(t, []string{"Заблокируй SIM\\-карту", "Смени пароли", msgChooseArticle}, sentTexts(sent))
}

func TestStorageFailureApologises(t *testing.T) {
	env := newTestEnv(t)
	env.mr.Close()

	env.h.HandleEvent(context.Background(), textEvent(testUser, "", "Self-check"))

	got := sentTexts(env.bot.take())
	assert.Equal(t, []string{msgInternalError, msgStartMenu}, got)
}

func TestRepeatedVoteOnLastQuestionKeepsReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Self-check"))
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	env.h.HandleEvent(ctx, nextEvent(testUser))
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	env.bot.take()

	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	env.h.HandleEvent(ctx, answerEvent(testUser))
	assert.Empty(t, env.bot.take())

	env.h.HandleEvent(ctx, nextEvent(testUser))
	got := sentTexts(env.bot.take())
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "Твой результат: 2 из 2")
	assert.Equal(t, msgStartMenu, got[1])

	report, err := env.stats.PollReport(ctx, "Self-check")
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Report[1][1])
}

func TestUnknownPollKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.h.HandleEvent(ctx, textEvent(testUser, "", "Self-check"))
	env.bot.take()

	require.NoError(t, env.h.startPoll(ctx, textEvent(testUser, "", "Missing"), "Missing"))
	assert.Equal(t, []string{msgPollNotFound, msgStartMenu}, sentTexts(env.bot.take()))

	// the running poll still accepts answers
	env.h.HandleEvent(ctx, answerEvent(testUser, 0))
	assert.Equal(t, "✅ correct", lastMessage(t, env.bot.take()).Text)
}
