package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"finance-chatbot-be/internal/dto"
	"finance-chatbot-be/internal/pkg/logger"
	"finance-chatbot-be/internal/pkg/serverutils"
	"finance-chatbot-be/internal/repository/memory"
	"finance-chatbot-be/internal/service"
	"finance-chatbot-be/pkg/events"
)

type ChatController struct {
	chatService service.IChatService
	sessions    memory.ISessionRepository
	usage       *events.UsageTracker
	log         logger.ILogger
}

func NewChatController(
	chatService service.IChatService,
	sessions memory.ISessionRepository,
	usage *events.UsageTracker,
	log logger.ILogger,
) *ChatController {
	return &ChatController{
		chatService: chatService,
		sessions:    sessions,
		usage:       usage,
		log:         log,
	}
}

func (c *ChatController) RegisterRoutes(router fiber.Router) {
	chat := router.Group("/chat/v1")
	chat.Post("/", c.Chat)
	chat.Get("/health", c.Health)
}

func (c *ChatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	// The required tag passes whitespace, which has nothing to answer.
	if strings.TrimSpace(req.Message) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "message must not be blank"))
	}

	reply := c.chatService.Chat(ctx.UserContext(), req.UserId, req.Message)
	return ctx.JSON(dto.ChatResponse{Interpretation: reply})
}

func (c *ChatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:         "ok",
		ActiveSessions: c.sessions.ActiveCount(),
		CallsToday:     c.usage.CallsToday(),
		DailyCap:       c.usage.Cap(),
	})
}
