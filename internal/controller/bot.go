package controller

import (
	"context"

	"github.com/Freeeeeet/ybooking/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, cmdHandlers *handlers.Handlers, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/doctors", bot.MatchTypeExact, h.HandleDoctors)

	// Команды с аргументами
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypePrefix, h.HandleSlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myslots", bot.MatchTypePrefix, h.HandleMySlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book", bot.MatchTypePrefix, h.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.HandleCancel)

	// Команды для врачей
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/setschedule", bot.MatchTypePrefix, h.HandleSetSchedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addinterval", bot.MatchTypePrefix, h.HandleAddInterval)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delinterval", bot.MatchTypePrefix, h.HandleDeleteInterval)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addvacation", bot.MatchTypePrefix, h.HandleAddVacation)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delvacation", bot.MatchTypePrefix, h.HandleDeleteVacation)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/availability", bot.MatchTypePrefix, h.HandleAvailability)

	// Команды администратора
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/makedoctor", bot.MatchTypePrefix, h.HandleMakeDoctor)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/block", bot.MatchTypePrefix, h.HandleBlock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unblock", bot.MatchTypePrefix, h.HandleUnblock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.HandleStats)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/generate", bot.MatchTypePrefix, h.HandleGenerate)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "doctors", Description: "👨‍⚕️ Список врачей"},
		{Command: "myslots", Description: "📅 Мои записи"},
		{Command: "availability", Description: "🗓 Моё расписание (врач)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
