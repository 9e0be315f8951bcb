package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
)

// ChatbotHandler base de conocimiento y consultas al asistente.
type ChatbotHandler struct {
	uc *usecase.ChatbotUseCase
}

// NewChatbotHandler construye el handler.
func NewChatbotHandler(uc *usecase.ChatbotUseCase) *ChatbotHandler {
	return &ChatbotHandler{uc: uc}
}

// List godoc
// @Summary      Entradas de la base de conocimiento
// @Tags         chatbot
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activas"
// @Success      200  {array}  dto.KnowledgeEntryResponse
// @Router       /api/chatbot/knowledge [get]
func (h *ChatbotHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Agregar entrada de conocimiento
// @Tags         chatbot
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.KnowledgeEntryRequest  true  "Pregunta, respuesta y etiquetas"
// @Success      201   {object}  dto.KnowledgeEntryResponse
// @Router       /api/chatbot/knowledge [post]
func (h *ChatbotHandler) Create(c *fiber.Ctx) error {
	var in dto.KnowledgeEntryRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar entrada de conocimiento
// @Tags         chatbot
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la entrada"
// @Param        body  body  dto.KnowledgeEntryRequest  true  "Entrada"
// @Success      200   {object}  dto.KnowledgeEntryResponse
// @Router       /api/chatbot/knowledge/{id} [put]
func (h *ChatbotHandler) Update(c *fiber.Ctx) error {
	var in dto.KnowledgeEntryRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar entrada de conocimiento
// @Tags         chatbot
// @Security     Bearer
// @Param        id   path  string  true  "ID de la entrada"
// @Success      204
// @Router       /api/chatbot/knowledge/{id} [delete]
func (h *ChatbotHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Ask godoc
// @Summary      Preguntar al asistente
// @Description  Responde usando las entradas activas más relacionadas como contexto.
// @Tags         chatbot
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AskRequest  true  "Pregunta"
// @Success      200   {object}  dto.AskResponse
// @Failure      500   {object}  dto.ErrorResponse  "Asistente no configurado"
// @Router       /api/chatbot/ask [post]
func (h *ChatbotHandler) Ask(c *fiber.Ctx) error {
	var in dto.AskRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Ask(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
