package handlers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"retailadmin/database"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/utils"
)

// inventoryNames maps a reference field of an item to the collection it points at and the name it gains.
var inventoryNames = []struct {
	field, collection, as string
}{
	{"brandId", "brands", "brandName"},
	{"supplierId", "suppliers", "supplierName"},
	{"itemGroupId", "item-groups", "groupName"},
	{"storeId", "stores", "storeName"},
}

type refKey struct{ collection, id string }

// HandleInventory lists items with the names of their brand, supplier, group and store resolved.
// GET /api/inventory?page&limit&search
func (h *Handler) HandleInventory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	f := filterFrom(c)
	items, total, err := h.store.List(ctx, resources.Items.Name, database.ListQuery{
		Search: f.Search,
		Offset: f.Offset(),
		Limit:  f.Limit,
	})
	if err != nil {
		return storeFailure(c, err, "", "Failed to fetch inventory")
	}

	wanted := map[refKey]struct{}{}
	for _, item := range items {
		for _, ref := range inventoryNames {
			if id := item.Text(ref.field); id != "" {
				wanted[refKey{ref.collection, id}] = struct{}{}
			}
		}
	}

	var mu sync.Mutex
	names := make(map[refKey]string, len(wanted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for key := range wanted {
		key := key
		g.Go(func() error {
			rec, err := h.store.Get(gctx, key.collection, key.id)
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			schema, _ := resources.Lookup(key.collection)
			mu.Lock()
			names[key] = rec.Text(schema.LabelField)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logFor(c).Error("Error resolving inventory references", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch inventory")
	}

	out := make([]models.Record, 0, len(items))
	for _, item := range items {
		row := public(item)
		for _, ref := range inventoryNames {
			row[ref.as] = names[refKey{ref.collection, item.Text(ref.field)}]
		}
		out = append(out, row)
	}
	return c.JSON(fiber.Map{
		"status":     "success",
		"data":       out,
		"total":      total,
		"pagination": utils.CreatePagination(total, f.Page, f.Limit),
	})
}
