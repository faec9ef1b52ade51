package handlers

import (
	"context"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// caller зарегистрированный отправитель команды
type caller struct {
	person    model.Person
	requester model.Requester
	chatID    int64
}

// resolveCaller определяет отправителя. Незарегистрированный получает PersonID = 0.
func (h *Handlers) resolveCaller(ctx context.Context, b *bot.Bot, update *models.Update) (*caller, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	c := &caller{
		chatID:    update.Message.Chat.ID,
		requester: model.Requester{IsAdmin: h.admins.IsAdmin(telegramID)},
	}

	person, err := h.personService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get person", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, c.chatID, internalErrorText)
		return nil, false
	}

	if person != nil && person.Base().IsActive {
		c.person = person
		c.requester.PersonID = person.Base().ID
	}

	return c, true
}

// requirePerson проверяет что отправитель зарегистрирован и не заблокирован
func (h *Handlers) requirePerson(ctx context.Context, b *bot.Bot, update *models.Update) (*caller, bool) {
	c, ok := h.resolveCaller(ctx, b, update)
	if !ok {
		return nil, false
	}

	if c.person == nil {
		h.sendError(ctx, b, c.chatID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return c, true
}

// requireDoctor проверяет что отправитель является врачом
func (h *Handlers) requireDoctor(ctx context.Context, b *bot.Bot, update *models.Update) (*caller, *model.Doctor, bool) {
	c, ok := h.requirePerson(ctx, b, update)
	if !ok {
		return nil, nil, false
	}

	doctor, isDoctor := c.person.(*model.Doctor)
	if !isDoctor {
		h.sendError(ctx, b, c.chatID, "❌ Эта команда доступна только врачам.")
		return nil, nil, false
	}

	return c, doctor, true
}

// requireAdmin проверяет Telegram ID по списку администраторов
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*caller, bool) {
	c, ok := h.resolveCaller(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !c.requester.IsAdmin {
		h.sendError(ctx, b, c.chatID, "⛔ Команда доступна только администратору.")
		return nil, false
	}

	return c, true
}

// replyError логирует неожиданные ошибки и отвечает пользователю
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, op string, err error) {
	if model.Code(err) == "" {
		h.logger.Error("Command failed", zap.String("op", op), zap.Error(err))
	}
	h.sendError(ctx, b, chatID, messageFor(err))
}

func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.send(ctx, b, chatID, text)
}
