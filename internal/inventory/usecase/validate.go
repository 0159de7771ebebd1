package usecase

import (
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/validation"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/google/uuid"
)

const MaxBulkItems = 100

func validateCreate(in *dto.CreateItemInput) error {
	if in == nil {
		return inventory.NewValidationError("body", "request body is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.SKU = strings.TrimSpace(in.SKU)
	trimAll(in.Tags)

	return validation.Struct(in)
}

func validatePatch(p *dto.ItemPatch) error {
	if p == nil {
		return inventory.NewValidationError("body", "request body is required")
	}
	trimPtr(p.Name)
	trimPtr(p.Description)
	trimPtr(p.SKU)
	if p.Tags != nil {
		trimAll(*p.Tags)
	}

	return validation.Struct(p)
}

// parseItemID returns the canonical form of a client supplied item id.
func parseItemID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", inventory.NewValidationError("id", "item id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", inventory.NewValidationError("id", "invalid id format")
	}
	return id.String(), nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func trimAll(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// applyPatch copies the set fields of p onto item. Ownership fields are
// not part of a patch.
func applyPatch(item *model.Item, p *dto.ItemPatch) {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Description != nil {
		item.Description = strings.TrimSpace(*p.Description)
	}
	if p.Tags != nil {
		item.Tags = cleanTags(*p.Tags)
	}
	if p.SKU != nil {
		item.SKU = optional(*p.SKU)
	}
	if p.Barcode != nil {
		item.Barcode = optional(*p.Barcode)
	}
	if p.Supplier != nil {
		item.Supplier = p.Supplier
	}
	if p.Location != nil {
		item.Location = p.Location
	}
	if p.ReorderPoint != nil {
		item.ReorderPoint = *p.ReorderPoint
	}
	if p.ReorderQuantity != nil {
		item.ReorderQuantity = *p.ReorderQuantity
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Cost != nil {
		item.Cost = p.Cost
	}
	if p.ProfitMargin != nil {
		item.ProfitMargin = p.ProfitMargin
	}
	if p.LastRestocked != nil {
		item.LastRestocked = p.LastRestocked
	}
	if p.ExpiryDate != nil {
		item.ExpiryDate = p.ExpiryDate
	}
}

func cleanTags(tags []string) model.Tags {
	out := make(model.Tags, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}
