package handlers

import (
	"time"

	"github.com/Freeeeeet/ybooking/internal/service"
	"go.uber.org/zap"
)

// AdminChecker сообщает, является ли Telegram ID администратором
type AdminChecker interface {
	IsAdmin(telegramID int64) bool
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	personService       *service.PersonService
	bookingService      *service.BookingService
	availabilityService *service.AvailabilityService
	statisticsService   *service.StatisticsService
	generationService   *service.GenerationService
	admins              AdminChecker
	location            *time.Location
	now                 func() time.Time
	logger              *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	personService *service.PersonService,
	bookingService *service.BookingService,
	availabilityService *service.AvailabilityService,
	statisticsService *service.StatisticsService,
	generationService *service.GenerationService,
	admins AdminChecker,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		personService:       personService,
		bookingService:      bookingService,
		availabilityService: availabilityService,
		statisticsService:   statisticsService,
		generationService:   generationService,
		admins:              admins,
		location:            location,
		now:                 time.Now,
		logger:              logger,
	}
}

func (h *Handlers) currentTime() time.Time {
	return h.now().In(h.location)
}
