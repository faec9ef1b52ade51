package handlers

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/ybooking/internal/model"
)

const internalErrorText = "❌ Произошла ошибка. Попробуйте позже."

// messageFor превращает ошибку сервиса в текст для пользователя.
// Занятый слот и отсутствующий слот должны различаться.
func messageFor(err error) string {
	var domainErr *model.Error
	if !errors.As(err, &domainErr) {
		return internalErrorText
	}

	switch domainErr.Code {
	case model.ErrAlreadyBooked.Code:
		return "⏳ Этот слот уже занят. Выберите другое время."
	case model.ErrNotFound.Code:
		return "🔍 Не найдено. Возможно, слот уже прошёл или был отменён."
	case model.ErrForbidden.Code:
		return "⛔ Недостаточно прав для этого действия."
	case model.ErrInvalidSchedule.Code, model.ErrInvalidArgument.Code:
		return fmt.Sprintf("⚠️ Некорректные данные: %s", domainErr.Message)
	default:
		return internalErrorText
	}
}
