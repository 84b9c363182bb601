package loan

import (
	"time"

	"github.com/magabrotheeeer/library-management/internal/lib/period"
)

// DefaultFinePerDay — штраф за каждый начатый день просрочки.
const DefaultFinePerDay = 5

// FinePolicy вычисляет штраф за просрочку.
type FinePolicy struct {
	PerDay int
}

// Amount возвращает штраф за возврат в момент returned при сроке due.
// Неполный день считается за полный, возврат в срок бесплатен.
func (p FinePolicy) Amount(due, returned time.Time) int {
	return period.OverdueDays(due, returned) * p.PerDay
}
