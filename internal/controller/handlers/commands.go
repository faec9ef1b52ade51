package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Для пациентов:\n" +
	"/doctors - Список врачей\n" +
	"/slots <id врача> - Свободные слоты врача\n" +
	"/book <id слота> - Записаться\n" +
	"/myslots - Мои записи\n" +
	"/cancel <id слота> - Отменить запись\n\n" +
	"Для врачей:\n" +
	"/setschedule <дней> <минут> - Горизонт и длительность приёма\n" +
	"/addinterval <день> <HH:MM> <HH:MM> - Окно приёма (день: MON..SUN или 0-6)\n" +
	"/delinterval <id> - Удалить окно\n" +
	"/addvacation <YYYY-MM-DD> [YYYY-MM-DD] - Отпуск\n" +
	"/delvacation <id> - Удалить отпуск\n" +
	"/availability - Моё расписание\n" +
	"/myslots - Мои свободные слоты\n\n" +
	"Для администратора:\n" +
	"/makedoctor <id>, /block <id>, /unblock <id>, /stats, /generate"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	person, err := h.personService.Register(ctx, user.ID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		h.logger.Error("Failed to register person", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	h.send(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Ваш номер в системе: %d.\n"+
			"Это бот для записи на приём к врачу.\n\n"+
			"/doctors - Список врачей\n"+
			"/help - Справка",
		person.Base().FirstName,
		person.Base().ID,
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleDoctors обрабатывает команду /doctors
func (h *Handlers) HandleDoctors(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	doctors, err := h.personService.ListDoctors(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "list doctors", err)
		return
	}

	if len(doctors) == 0 {
		h.send(ctx, b, update.Message.Chat.ID, "👨‍⚕️ Врачей пока нет.")
		return
	}

	var sb strings.Builder
	sb.WriteString("👨‍⚕️ Врачи:\n\n")
	for _, d := range doctors {
		sb.WriteString(fmt.Sprintf("#%d %s %s %s\n", d.ID, d.LastName, d.FirstName, d.Patronymic))
	}
	sb.WriteString("\nСвободные слоты: /slots <id врача>")

	h.send(ctx, b, update.Message.Chat.ID, sb.String())
}
