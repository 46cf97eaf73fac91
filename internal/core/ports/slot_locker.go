package ports

import (
	"context"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// SlotLocker serialises writers competing for the same slot. The returned
// release func must be called once the write has been persisted.
type SlotLocker interface {
	Lock(ctx context.Context, slot domain.Slot) (release func(), err error)
}
