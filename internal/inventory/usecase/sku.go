package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/google/uuid"
)

// GenerateSKU builds CAT-NNNNNN-XXX: the category prefix, the last six
// digits of the millisecond clock and three random characters.
func GenerateSKU(category model.Category, now time.Time) string {
	prefix := strings.ToUpper(strings.ReplaceAll(string(category), " ", ""))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	stamp := now.UnixMilli() % 1_000_000
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:3])
	return fmt.Sprintf("%s-%06d-%s", prefix, stamp, random)
}
