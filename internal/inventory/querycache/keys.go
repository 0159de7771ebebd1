package querycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
)

const (
	prefix          = "inventory"
	kindItem        = "item"
	kindList        = "list"
	kindStats       = "stats"
	kindLowStock    = "low-stock"
	kindOutOfStock  = "out-of-stock"
	globalScopeName = "global"
)

// scopeSegment names the ownership scope a result was computed under.
// Admin results share the global scope; everyone else is scoped to
// the records they own.
func scopeSegment(id auth.Identity) string {
	if id.IsAdmin() {
		return globalScopeName
	}
	return ownerSegment(id.UserID)
}

func ownerSegment(ownerID string) string {
	return "user:" + ownerID
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}

func ItemKey(itemID string) string {
	return join(prefix, kindItem, itemID)
}

func StatsKey(id auth.Identity) string {
	return join(prefix, kindStats, scopeSegment(id))
}

func LowStockKey(id auth.Identity) string {
	return join(prefix, kindLowStock, scopeSegment(id))
}

func OutOfStockKey(id auth.Identity) string {
	return join(prefix, kindOutOfStock, scopeSegment(id))
}

type fingerprintInput struct {
	Params dto.ListParams `json:"params"`
	UserID string         `json:"userId"`
	Role   auth.Role      `json:"role"`
}

// Fingerprint is the list cache key for already-normalized params. The
// scope is a readable prefix so a whole scope can be dropped with one
// glob; the hash covers every parameter plus identity and role.
func Fingerprint(params dto.ListParams, id auth.Identity) string {
	raw, _ := json.Marshal(fingerprintInput{Params: params, UserID: id.UserID, Role: id.Role})
	sum := sha256.Sum256(raw)
	return join(prefix, kindList, scopeSegment(id), hex.EncodeToString(sum[:]))
}

// escapeGlob quotes glob metacharacters in a literal key segment.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
