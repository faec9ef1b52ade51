package model

import (
	"errors"
	"fmt"
)

// Error доменная ошибка со стабильным кодом
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по коду, чтобы errors.Is работал и для копий с контекстом
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithError добавляет underlying ошибку
func (e *Error) WithError(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage заменяет текст, сохраняя код
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

var (
	ErrNotFound = &Error{
		Code:    "not_found",
		Message: "не найдено",
	}

	ErrAlreadyBooked = &Error{
		Code:    "already_booked",
		Message: "слот уже занят",
	}

	ErrForbidden = &Error{
		Code:    "forbidden",
		Message: "недостаточно прав",
	}

	ErrInvalidSchedule = &Error{
		Code:    "invalid_schedule",
		Message: "некорректные параметры расписания",
	}

	ErrInvalidArgument = &Error{
		Code:    "invalid_argument",
		Message: "некорректный аргумент",
	}
)

// Code достаёт код доменной ошибки, пустая строка для прочих
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
