package httpapi

import "github.com/gofiber/fiber/v2"

func (h *Handlers) SendChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	reply, err := h.chat.Send(c.UserContext(), currentUser(c), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(ChatResponse{Response: reply, Success: true})
}

func (h *Handlers) ChatHistory(c *fiber.Ctx) error {
	msgs, err := h.chat.History(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}

	out := ChatHistoryResponse{History: make([]ChatHistoryItem, 0, len(msgs))}
	for _, m := range msgs {
		out.History = append(out.History, ChatHistoryItem{Message: m.Message, Response: m.Response, CreatedAt: m.CreatedAt})
	}
	return c.JSON(out)
}
