package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleSlots обрабатывает /slots <id>: свободные слоты врача или записи пациента
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.resolveCaller(ctx, b, update)
	if !ok {
		return
	}

	personID, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /slots <id врача>")
		return
	}

	slots, err := h.bookingService.ListSlots(ctx, personID, c.requester, h.currentTime())
	if err != nil {
		h.replyError(ctx, b, c.chatID, "list slots", err)
		return
	}

	h.send(ctx, b, c.chatID, FormatSlots(fmt.Sprintf("🗓 Слоты #%d", personID), slots, h.location))
}

// HandleMySlots обрабатывает /myslots
func (h *Handlers) HandleMySlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.requirePerson(ctx, b, update)
	if !ok {
		return
	}

	slots, err := h.bookingService.ListSlots(ctx, c.requester.PersonID, c.requester, h.currentTime())
	if err != nil {
		h.replyError(ctx, b, c.chatID, "list own slots", err)
		return
	}

	h.send(ctx, b, c.chatID, FormatSlots("📅 Мои слоты", slots, h.location))
}

// HandleBook обрабатывает /book <id слота>
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.requirePerson(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /book <id слота>")
		return
	}

	slot, err := h.bookingService.ClaimSlot(ctx, slotID, c.requester, h.currentTime())
	if err != nil {
		h.replyError(ctx, b, c.chatID, "claim slot", err)
		return
	}

	h.send(ctx, b, c.chatID, "✅ Вы записаны!\n\n"+FormatSlot(slot, h.location)+"\n\nОтменить: /cancel "+fmt.Sprint(slot.ID))
}

// HandleCancel обрабатывает /cancel <id слота>
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	c, ok := h.resolveCaller(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := parseID(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, c.chatID, "Использование: /cancel <id слота>")
		return
	}

	if err := h.bookingService.ReleaseSlot(ctx, slotID, c.requester, h.currentTime()); err != nil {
		h.replyError(ctx, b, c.chatID, "release slot", err)
		return
	}

	h.send(ctx, b, c.chatID, fmt.Sprintf("✅ Запись на слот #%d отменена.", slotID))
}
