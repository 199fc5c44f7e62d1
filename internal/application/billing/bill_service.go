package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/directory"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// Collaborator lookups (catalog, directory) are retried a bounded number
// of times before surfacing as COLLABORATOR_ERROR. Domain errors such as
// NOT_FOUND are deterministic and never retried.
const (
	collaboratorRetries = 3
	collaboratorBackoff = 50 * time.Millisecond
)

// BillService orchestrates bill creation, payment application and status
// administration. All domain rules live in the aggregate; the service
// sequences collaborator lookups, persistence and concurrency control.
type BillService struct {
	billRepo     billing.BillRepository
	serviceRepo  catalog.ServiceRepository
	patientRepo  directory.PatientRepository
	hospitalRepo directory.HospitalRepository
	logger       *zap.Logger
	nowFn        func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo billing.BillRepository,
	serviceRepo catalog.ServiceRepository,
	patientRepo directory.PatientRepository,
	hospitalRepo directory.HospitalRepository,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		billRepo:     billRepo,
		serviceRepo:  serviceRepo,
		patientRepo:  patientRepo,
		hospitalRepo: hospitalRepo,
		logger:       logger,
		nowFn:        time.Now,
	}
}

// BillItemRequest is one requested line on a new bill. Pricing comes from
// the catalog; the caller only chooses quantity and an optional discount
// override.
type BillItemRequest struct {
	ServiceID          uuid.UUID
	Quantity           int64
	DiscountPercentage *decimal.Decimal
}

// CreateBillRequest carries the inputs for bill creation
type CreateBillRequest struct {
	PatientID  uuid.UUID
	HospitalID uuid.UUID
	BillDate   time.Time
	DueDate    time.Time
	Items      []BillItemRequest
	Notes      string
}

// AddPaymentRequest carries the inputs for recording a payment
type AddPaymentRequest struct {
	Amount      valueobject.Money
	PaymentDate time.Time
	Method      billing.PaymentMethod
	Reference   string
	Notes       string
}

// CreateBill validates the request, prices each line from the catalog,
// aggregates totals and persists the new bill in a single write.
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*billing.Bill, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_BILL", "Bill must contain at least one line item")
	}
	if !req.DueDate.After(req.BillDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Due date must be after bill date")
	}

	patient, err := s.lookupPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	hospital, err := s.lookupHospital(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}

	items := make([]billing.BillItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		svc, err := s.lookupService(ctx, itemReq.ServiceID)
		if err != nil {
			return nil, err
		}

		discount := svc.DiscountPercentage
		if itemReq.DiscountPercentage != nil {
			discount = *itemReq.DiscountPercentage
		}

		item, err := billing.NewBillItem(
			svc.ID, svc.ServiceName, svc.ServiceType,
			svc.UnitPriceMoney(), itemReq.Quantity,
			svc.TaxPercentage, discount,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	billNumber, err := s.billRepo.GenerateBillNumber(ctx, req.BillDate)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bill number: %w", err)
	}

	bill, err := billing.NewBill(
		billNumber,
		patient.ID, patient.FullName,
		hospital.ID, hospital.Name,
		req.BillDate, req.DueDate,
		items, req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	s.logger.Info("bill created",
		zap.String("bill_number", bill.BillNumber),
		zap.String("patient_id", bill.PatientID.String()),
		zap.String("total_amount", bill.TotalAmount.StringFixed(2)),
	)

	return bill, nil
}

// GetBill loads a bill and re-resolves its status as of now, so a bill
// that crossed its due date reads as OVERDUE without waiting for the next
// write. The refresh stays in memory; reads never contend with writers.
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bill.RefreshStatus(s.nowFn())
	return bill, nil
}

// GetBillByNumber loads a bill by its bill number
func (s *BillService) GetBillByNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	bill.RefreshStatus(s.nowFn())
	return bill, nil
}

// AddPayment loads the current bill, applies the payment through the
// aggregate and persists with an optimistic-concurrency check. A stale
// version surfaces as CONCURRENCY_CONFLICT; the caller re-reads and
// retries. A duplicate submission returns the bill unchanged.
func (s *BillService) AddPayment(ctx context.Context, billID uuid.UUID, req AddPaymentRequest) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	bill.RefreshStatus(now)

	versionBefore := bill.Version
	if err := bill.ApplyPayment(req.Amount, req.PaymentDate, req.Method, req.Reference, req.Notes, now); err != nil {
		return nil, err
	}
	if bill.Version == versionBefore {
		// duplicate submission, nothing to persist
		return bill, nil
	}

	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("bill_number", bill.BillNumber),
		zap.String("amount", req.Amount.StringFixed()),
		zap.String("method", string(req.Method)),
		zap.String("status", string(bill.Status)),
	)

	return bill, nil
}

// UpdateStatus performs an administrative status override. Cancellation
// is the only supported override; everything else is derived.
func (s *BillService) UpdateStatus(ctx context.Context, billID uuid.UUID, status billing.BillStatus, reason string) (*billing.Bill, error) {
	if status != billing.BillStatusCancelled {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Only cancellation can be requested directly; other statuses are derived")
	}

	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	bill.RefreshStatus(now)

	if err := bill.Cancel(reason, now); err != nil {
		return nil, err
	}

	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("bill cancelled",
		zap.String("bill_number", bill.BillNumber),
		zap.String("reason", reason),
	)

	return bill, nil
}

// ListBills returns bills matching the filter with statuses re-resolved
// as of now
func (s *BillService) ListBills(ctx context.Context, filter billing.BillFilter) (shared.Paginated[*billing.Bill], error) {
	result, err := s.billRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}
	s.refreshAll(result.Items)
	return result, nil
}

// ListByPatient returns the patient's bills
func (s *BillService) ListByPatient(ctx context.Context, patientID uuid.UUID, filter billing.BillFilter) (shared.Paginated[*billing.Bill], error) {
	filter.PatientID = &patientID
	return s.ListBills(ctx, filter)
}

// ListByHospital returns the hospital's bills
func (s *BillService) ListByHospital(ctx context.Context, hospitalID uuid.UUID, filter billing.BillFilter) (shared.Paginated[*billing.Bill], error) {
	filter.HospitalID = &hospitalID
	return s.ListBills(ctx, filter)
}

// ListOverdue returns open bills past their due date
func (s *BillService) ListOverdue(ctx context.Context, filter shared.Filter) (shared.Paginated[*billing.Bill], error) {
	result, err := s.billRepo.FindOverdue(ctx, s.nowFn(), filter)
	if err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}
	s.refreshAll(result.Items)
	return result, nil
}

func (s *BillService) refreshAll(bills []*billing.Bill) {
	now := s.nowFn()
	for _, bill := range bills {
		bill.RefreshStatus(now)
	}
}

func (s *BillService) lookupPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error) {
	var patient *directory.Patient
	err := s.withRetry(ctx, "patient lookup", func() error {
		var lookupErr error
		patient, lookupErr = s.patientRepo.FindByID(ctx, id)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *BillService) lookupHospital(ctx context.Context, id uuid.UUID) (*directory.Hospital, error) {
	var hospital *directory.Hospital
	err := s.withRetry(ctx, "hospital lookup", func() error {
		var lookupErr error
		hospital, lookupErr = s.hospitalRepo.FindByID(ctx, id)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}
	return hospital, nil
}

func (s *BillService) lookupService(ctx context.Context, id uuid.UUID) (*catalog.ServiceDefinition, error) {
	var svc *catalog.ServiceDefinition
	err := s.withRetry(ctx, "catalog lookup", func() error {
		var lookupErr error
		svc, lookupErr = s.serviceRepo.FindByID(ctx, id)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Service is not available for billing")
	}
	return svc, nil
}

// withRetry runs a collaborator lookup with bounded retries. Domain
// errors are deterministic and returned immediately; infrastructure
// failures are retried and ultimately wrapped as COLLABORATOR_ERROR.
func (s *BillService) withRetry(ctx context.Context, name string, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= collaboratorRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}

		var domainErr *shared.DomainError
		if errors.As(lastErr, &domainErr) {
			return lastErr
		}

		s.logger.Warn("collaborator lookup failed",
			zap.String("lookup", name),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt < collaboratorRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %s: %w", shared.ErrCollaborator, name, ctx.Err())
			case <-time.After(collaboratorBackoff):
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrCollaborator, name, lastErr)
}
