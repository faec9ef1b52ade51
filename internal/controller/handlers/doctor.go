package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleSetSchedule обрабатывает /setschedule <дней> <минут>
func (h *Handlers) HandleSetSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	days, minutes, err := parseScheduleArgs(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /setschedule <дней> <минут>")
		return
	}

	schedule, err := h.availabilityService.SetSchedule(ctx, c.requester, doctor.ID, days, minutes)
	if err != nil {
		h.replyError(ctx, b, c.chatID, "set schedule", err)
		return
	}

	h.send(ctx, b, c.chatID, fmt.Sprintf(
		"✅ Расписание сохранено: %d дн. вперёд, приём %d мин.\nСлоты появятся после ближайшей генерации.",
		schedule.PlanningDays, schedule.SessionDuration,
	))
}

// HandleAddInterval обрабатывает /addinterval <день> <HH:MM> <HH:MM>
func (h *Handlers) HandleAddInterval(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	interval, err := parseIntervalArgs(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /addinterval <MON..SUN или 0-6> <HH:MM> <HH:MM>")
		return
	}
	interval.DoctorID = doctor.ID

	if err := h.availabilityService.AddInterval(ctx, c.requester, &interval); err != nil {
		h.replyError(ctx, b, c.chatID, "add interval", err)
		return
	}

	h.send(ctx, b, c.chatID, fmt.Sprintf("✅ Окно #%d добавлено: %s %s-%s",
		interval.ID, WeekdayShortName(interval.Weekday),
		model.FormatClock(interval.Start), model.FormatClock(interval.Stop),
	))
}

// HandleDeleteInterval обрабатывает /delinterval <id>
func (h *Handlers) HandleDeleteInterval(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	id, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /delinterval <id>")
		return
	}

	if err := h.availabilityService.RemoveInterval(ctx, c.requester, doctor.ID, id); err != nil {
		h.replyError(ctx, b, c.chatID, "remove interval", err)
		return
	}

	h.send(ctx, b, c.chatID, "✅ Окно удалено. Уже созданные слоты сохранены.")
}

// HandleAddVacation обрабатывает /addvacation <YYYY-MM-DD> [YYYY-MM-DD]
func (h *Handlers) HandleAddVacation(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	vacation, err := parseVacationArgs(commandArgs(update.Message.Text), h.location)
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /addvacation <YYYY-MM-DD> [YYYY-MM-DD]")
		return
	}
	vacation.DoctorID = doctor.ID

	if err := h.availabilityService.AddVacation(ctx, c.requester, &vacation); err != nil {
		h.replyError(ctx, b, c.chatID, "add vacation", err)
		return
	}

	h.send(ctx, b, c.chatID, fmt.Sprintf("🏖 Отпуск #%d: %s - %s",
		vacation.ID, FormatDate(vacation.StartDate), FormatDate(vacation.StopDate),
	))
}

// HandleDeleteVacation обрабатывает /delvacation <id>
func (h *Handlers) HandleDeleteVacation(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	id, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /delvacation <id>")
		return
	}

	if err := h.availabilityService.RemoveVacation(ctx, c.requester, doctor.ID, id); err != nil {
		h.replyError(ctx, b, c.chatID, "remove vacation", err)
		return
	}

	h.send(ctx, b, c.chatID, "✅ Отпуск удалён.")
}

// HandleAvailability обрабатывает /availability
func (h *Handlers) HandleAvailability(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, doctor, ok := h.requireDoctor(ctx, b, update)
	if !ok {
		return
	}

	overview, err := h.availabilityService.Overview(ctx, c.requester, doctor.ID, h.currentTime())
	if err != nil {
		h.replyError(ctx, b, c.chatID, "availability overview", err)
		return
	}

	h.send(ctx, b, c.chatID, FormatOverview(overview))
}
