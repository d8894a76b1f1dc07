package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"retailadmin/database"
	"retailadmin/resources"
	"retailadmin/utils"
)

// HandleList lists one page of a resource.
// GET /api/<resource>?page&limit&search
func (h *Handler) HandleList(s *resources.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := filterFrom(c)
		items, total, err := h.store.List(c.UserContext(), s.Name, database.ListQuery{
			Search: f.Search,
			Offset: f.Offset(),
			Limit:  f.Limit,
		})
		if err != nil {
			return storeFailure(c, err, "", fmt.Sprintf("Failed to fetch %s", s.Name))
		}
		for i := range items {
			items[i] = public(items[i])
		}
		return c.JSON(fiber.Map{
			"status":     "success",
			"data":       items,
			"total":      total,
			"pagination": utils.CreatePagination(total, f.Page, f.Limit),
		})
	}
}

// HandleGet returns one record.
// GET /api/<resource>/:id
func (h *Handler) HandleGet(s *resources.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := h.store.Get(c.UserContext(), s.Name, c.Params("id"))
		if err != nil {
			return storeFailure(c, err, s.Noun()+" not found", fmt.Sprintf("Failed to fetch %s", s.Singular))
		}
		return c.JSON(fiber.Map{"status": "success", "data": public(rec)})
	}
}

// HandleCreate validates and stores a new record.
// POST /api/<resource>
func (h *Handler) HandleCreate(s *resources.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := decodeRecord(c)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		delete(rec, "id")

		if s == resources.Users {
			var (
				status int
				msg    string
			)
			if rec, status, msg = h.prepareUser(c.UserContext(), rec, resources.Create, nil); status != 0 {
				return fail(c, status, msg)
			}
		} else if err := s.Validate(rec, resources.Create); err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}

		created, err := h.store.Insert(c.UserContext(), s.Name, rec)
		if err != nil {
			return storeFailure(c, err, "", fmt.Sprintf("Failed to create %s", s.Singular))
		}
		h.metrics.RecordOperations.WithLabelValues(s.Name, "create").Inc()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": public(created)})
	}
}

// HandleUpdate replaces a record with the submitted field set.
// PUT /api/<resource>/:id
func (h *Handler) HandleUpdate(s *resources.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		rec, err := decodeRecord(c)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		delete(rec, "id")

		previous, err := h.store.Get(c.UserContext(), s.Name, id)
		if err != nil {
			return storeFailure(c, err, s.Noun()+" not found", fmt.Sprintf("Failed to update %s", s.Singular))
		}
		if s == resources.Users {
			var (
				status int
				msg    string
			)
			if rec, status, msg = h.prepareUser(c.UserContext(), rec, resources.Edit, previous); status != 0 {
				return fail(c, status, msg)
			}
		} else if err := s.Validate(rec, resources.Edit); err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}

		updated, err := h.store.Update(c.UserContext(), s.Name, id, rec)
		if err != nil {
			return storeFailure(c, err, s.Noun()+" not found", fmt.Sprintf("Failed to update %s", s.Singular))
		}
		h.metrics.RecordOperations.WithLabelValues(s.Name, "update").Inc()
		return c.JSON(fiber.Map{"status": "success", "data": public(updated)})
	}
}

// HandleDelete removes a record.
// DELETE /api/<resource>/:id
func (h *Handler) HandleDelete(s *resources.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if s == resources.Users && c.Locals("userID") == id {
			return fail(c, fiber.StatusBadRequest, "You cannot delete your own account")
		}
		if err := h.store.Delete(c.UserContext(), s.Name, id); err != nil {
			return storeFailure(c, err, s.Noun()+" not found", fmt.Sprintf("Failed to delete %s", s.Singular))
		}
		h.metrics.RecordOperations.WithLabelValues(s.Name, "delete").Inc()
		return c.JSON(fiber.Map{"status": "success", "message": s.Noun() + " deleted"})
	}
}

// HandleDashboardStats counts the records of every resource.
// GET /api/dashboard/stats
func (h *Handler) HandleDashboardStats(c *fiber.Ctx) error {
	stored, err := h.store.Counts(c.UserContext())
	if err != nil {
		return storeFailure(c, err, "", "Failed to count records")
	}
	counts := make(map[string]int, len(resources.All()))
	for _, s := range resources.All() {
		counts[s.Name] = stored[s.Name]
	}
	return c.JSON(fiber.Map{"status": "success", "counts": counts})
}

