package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleMakeDoctor обрабатывает /makedoctor <id>
func (h *Handlers) HandleMakeDoctor(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.adminPersonCommand(ctx, b, update, "/makedoctor", h.personService.MakeDoctor, "✅ #%d теперь врач.")
}

// HandleBlock обрабатывает /block <id>
func (h *Handlers) HandleBlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.adminPersonCommand(ctx, b, update, "/block", h.personService.Block, "🚫 #%d заблокирован.")
}

// HandleUnblock обрабатывает /unblock <id>
func (h *Handlers) HandleUnblock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.adminPersonCommand(ctx, b, update, "/unblock", h.personService.Unblock, "✅ #%d разблокирован.")
}

func (h *Handlers) adminPersonCommand(
	ctx context.Context,
	b *bot.Bot,
	update *models.Update,
	command string,
	action func(context.Context, model.Requester, int64) error,
	okText string,
) {
	c, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	personID, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: "+command+" <id>")
		return
	}

	if err := action(ctx, c.requester, personID); err != nil {
		h.replyError(ctx, b, c.chatID, command, err)
		return
	}

	h.send(ctx, b, c.chatID, fmt.Sprintf(okText, personID))
}

// HandleStats обрабатывает /stats
func (h *Handlers) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	stats, err := h.statisticsService.Daily(ctx)
	if err != nil {
		h.replyError(ctx, b, c.chatID, "statistics", err)
		return
	}

	h.send(ctx, b, c.chatID, FormatStats(stats))
}

// HandleGenerate обрабатывает /generate: ручной запуск генерации
func (h *Handlers) HandleGenerate(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	report, err := h.generationService.GenerateTimeslots(ctx, h.currentTime())
	if err != nil {
		h.replyError(ctx, b, c.chatID, "generate", err)
		return
	}

	h.logger.Info("Manual generation finished", zap.String("batch_id", report.BatchID.String()))

	h.send(ctx, b, c.chatID, fmt.Sprintf(
		"⚙️ Генерация завершена\n\nВрачей: %d\nПропущено: %d\nОшибок: %d\nСоздано: %d %s",
		report.Doctors, report.Skipped, report.Failed, report.Slots, PluralizeSlots(int(report.Slots)),
	))
}
