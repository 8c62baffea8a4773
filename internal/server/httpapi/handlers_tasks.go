package httpapi

import (
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	page, err := h.tasks.List(c.UserContext(), currentUser(c), services.TaskQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   c.Query("page"),
	})
	if err != nil {
		return err
	}
	return c.JSON(newTaskPageResponse(page))
}

func taskInput(req TaskRequest) services.TaskInput {
	in := services.TaskInput{Title: req.Title, Note: req.Note, IsDone: req.IsDone}
	if req.DueAt.Set {
		in.DueAt = req.DueAt.Value
		in.ClearDueAt = req.DueAt.Value == nil
	}
	return in
}

func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.UserContext(), currentUser(c), taskInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newTaskResponse(task))
}

func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(newTaskResponse(task))
}

func (h *Handlers) updateTask(c *fiber.Ctx, partial bool) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var req TaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Update(c.UserContext(), currentUser(c), id, taskInput(req), partial)
	if err != nil {
		return err
	}
	return c.JSON(newTaskResponse(task))
}

func (h *Handlers) PutTask(c *fiber.Ctx) error   { return h.updateTask(c, false) }
func (h *Handlers) PatchTask(c *fiber.Ctx) error { return h.updateTask(c, true) }

func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, msg, err := h.tasks.Toggle(c.UserContext(), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(ToggleResponse{Task: newTaskResponse(task), Message: msg})
}

func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	st, err := h.tasks.Stats(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(StatsResponse{Total: st.Total, Completed: st.Completed, Pending: st.Pending})
}

func (h *Handlers) ExportTasks(c *fiber.Ctx) error {
	res, err := h.exporter.Export(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(ExportResponse{URL: res.URL, Key: res.Key, ExpiresAt: res.ExpiresAt})
}
