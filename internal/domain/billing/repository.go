package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/backend/internal/domain/shared"
)

// BillFilter holds query options for listing bills
type BillFilter struct {
	shared.Filter
	PatientID  *uuid.UUID
	HospitalID *uuid.UUID
	Status     *BillStatus
	FromDate   *time.Time
	ToDate     *time.Time
	Overdue    bool
}

// BillRepository provides durable storage for bills. Items and payments
// travel with the bill row; a mutation is one atomic write.
type BillRepository interface {
	Save(ctx context.Context, bill *Bill) error
	// SaveWithLock persists a mutated bill only if the stored version still
	// matches the version the caller loaded. A stale version returns
	// shared.ErrConcurrencyConflict; the caller re-reads and retries.
	SaveWithLock(ctx context.Context, bill *Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByNumber(ctx context.Context, billNumber string) (*Bill, error)
	List(ctx context.Context, filter BillFilter) (shared.Paginated[*Bill], error)
	FindOverdue(ctx context.Context, now time.Time, filter shared.Filter) (shared.Paginated[*Bill], error)
	// GenerateBillNumber returns the next bill number in the
	// BILL-YYYYMMDD-NNNNN sequence for the given day.
	GenerateBillNumber(ctx context.Context, date time.Time) (string, error)
}
