package usecase

import (
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var ve *inventory.ValidationError
	require.ErrorAs(t, err, &ve)
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *dto.CreateItemInput)
		want   []string
	}{
		{"valid", func(in *dto.CreateItemInput) {}, nil},
		{"valid with every optional field", func(in *dto.CreateItemInput) {
			in.Tags = []string{" tools ", "steel"}
			in.SKU = "TLS-1"
			in.Supplier = &model.Supplier{Name: "Acme", Email: "orders@acme.example"}
			in.Location = &model.Location{Warehouse: "North", Shelf: "A1", Bin: "3"}
			in.ReorderPoint = ptr(0)
			in.ReorderQuantity = ptr(1)
			in.Unit = model.UnitBoxes
			in.Status = model.ItemStatusInactive
			in.Cost = ptr(1.25)
			in.ProfitMargin = ptr(40.0)
		}, nil},
		{"blank name", func(in *dto.CreateItemInput) { in.Name = "   " }, []string{"name"}},
		{"long name", func(in *dto.CreateItemInput) { in.Name = strings.Repeat("n", 101) }, []string{"name"}},
		{"unknown category", func(in *dto.CreateItemInput) { in.Category = "Weapons" }, []string{"category"}},
		{"price above max", func(in *dto.CreateItemInput) { in.Price = 1000000 }, []string{"price"}},
		{"sub-cent price", func(in *dto.CreateItemInput) { in.Price = 1.005 }, []string{"price"}},
		{"sub-cent cost", func(in *dto.CreateItemInput) { in.Cost = ptr(0.001) }, []string{"cost"}},
		{"negative quantity", func(in *dto.CreateItemInput) { in.Quantity = -1 }, []string{"quantity"}},
		{"short description", func(in *dto.CreateItemInput) { in.Description = "tiny" }, []string{"description"}},
		{"blank and long tags", func(in *dto.CreateItemInput) {
			in.Tags = []string{"ok", " ", strings.Repeat("t", 51)}
		}, []string{"tags[1]", "tags[2]"}},
		{"bad supplier email", func(in *dto.CreateItemInput) {
			in.Supplier = &model.Supplier{Email: "not-an-email"}
		}, []string{"supplier.email"}},
		{"long shelf", func(in *dto.CreateItemInput) {
			in.Location = &model.Location{Shelf: strings.Repeat("s", 21)}
		}, []string{"location.shelf"}},
		{"zero reorder quantity", func(in *dto.CreateItemInput) { in.ReorderQuantity = ptr(0) }, []string{"reorderQuantity"}},
		{"unknown unit", func(in *dto.CreateItemInput) { in.Unit = "crates" }, []string{"unit"}},
		{"unknown status", func(in *dto.CreateItemInput) { in.Status = "archived" }, []string{"status"}},
		{"profit margin above 100", func(in *dto.CreateItemInput) { in.ProfitMargin = ptr(101.0) }, []string{"profitMargin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input("Widget", 5)
			tt.mutate(in)

			err := validateCreate(in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.want, fieldsOf(t, err))
		})
	}
}

func TestValidateCreate_TrimsBeforeChecking(t *testing.T) {
	in := input("  Widget  ", 5)
	in.Tags = []string{" a "}
	require.NoError(t, validateCreate(in))
	assert.Equal(t, "Widget", in.Name)
	assert.Equal(t, []string{"a"}, in.Tags)
}

func TestValidateCreate_Messages(t *testing.T) {
	in := input("Widget", 5)
	in.Price = 1.005
	in.Supplier = &model.Supplier{Email: "nope"}

	var ve *inventory.ValidationError
	require.ErrorAs(t, validateCreate(in), &ve)
	assert.ElementsMatch(t, []inventory.FieldError{
		{Field: "price", Message: "price cannot have more than two decimal places"},
		{Field: "supplier.email", Message: "supplier.email must be a valid email address"},
	}, ve.Errors)
}

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name  string
		patch dto.ItemPatch
		want  []string
	}{
		{"empty patch", dto.ItemPatch{}, nil},
		{"zero quantity is allowed", dto.ItemPatch{Quantity: ptr(0)}, nil},
		{"empty tag list clears tags", dto.ItemPatch{Tags: ptr([]string{})}, nil},
		{"blank name", dto.ItemPatch{Name: ptr("  ")}, []string{"name"}},
		{"zero reorder quantity", dto.ItemPatch{ReorderQuantity: ptr(0)}, []string{"reorderQuantity"}},
		{"negative price", dto.ItemPatch{Price: ptr(-0.01)}, []string{"price"}},
		{"unknown category", dto.ItemPatch{Category: ptr(model.Category("Weapons"))}, []string{"category"}},
		{"blank sku", dto.ItemPatch{SKU: ptr("")}, []string{"sku"}},
		{"bad supplier email", dto.ItemPatch{Supplier: &model.Supplier{Email: "x@"}}, []string{"supplier.email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePatch(&tt.patch)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.want, fieldsOf(t, err))
		})
	}
}

func TestParseItemID(t *testing.T) {
	id, err := parseItemID("  00000000-0000-4000-8000-0000000000A1 ")
	require.NoError(t, err)
	assert.Equal(t, idA1, id)

	for _, raw := range []string{"", "not-a-uuid", "a1", "00000000-0000-4000-8000-0000000000zz"} {
		_, err := parseItemID(raw)
		assert.Equal(t, []string{"id"}, fieldsOf(t, err), raw)
	}
}
