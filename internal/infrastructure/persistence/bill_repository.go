package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
)

// open statuses as stored; OVERDUE rows are still open because the
// stored status may lag the due date until the next write
var openBillStatuses = []billing.BillStatus{
	billing.BillStatusPending,
	billing.BillStatusPartiallyPaid,
	billing.BillStatusOverdue,
}

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The aggregate has already
// incremented its version, so the row must still hold the previous one;
// zero affected rows means another writer got there first.
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a bill by its bill number
func (r *GormBillRepository) FindByNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("bill_number = ?", billNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns bills matching the filter with pagination
func (r *GormBillRepository) List(ctx context.Context, filter billing.BillFilter) (shared.Paginated[*billing.Bill], error) {
	var count int64
	countQuery := r.applyBillFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)
	if err := countQuery.Count(&count).Error; err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}

	var billModels []models.BillModel
	query := r.applyBillFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)
	query = applyPagination(query, filter.Filter, BillSortFields)
	if err := query.Find(&billModels).Error; err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}

	return shared.NewPaginated(toDomainBills(billModels), count, filter.Page, filter.PageSize), nil
}

// FindOverdue returns open bills whose due date is in the past
func (r *GormBillRepository) FindOverdue(ctx context.Context, now time.Time, filter shared.Filter) (shared.Paginated[*billing.Bill], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.BillModel{}).
			Where("due_date < ? AND status IN ?", now, openBillStatuses)
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}

	var billModels []models.BillModel
	if err := applyPagination(base(), filter, BillSortFields).Find(&billModels).Error; err != nil {
		return shared.Paginated[*billing.Bill]{}, err
	}

	return shared.NewPaginated(toDomainBills(billModels), count, filter.Page, filter.PageSize), nil
}

// GenerateBillNumber generates the next bill number for the given day.
// Format: BILL-YYYYMMDD-NNNNN.
func (r *GormBillRepository) GenerateBillNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := fmt.Sprintf("BILL-%s-", date.Format("20060102"))

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Select("bill_number").
		Where("bill_number LIKE ?", prefix+"%").
		Order("bill_number DESC").
		Limit(1).
		Pluck("bill_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormBillRepository) applyBillFilter(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("bill_number ILIKE ? OR patient_name ILIKE ?", pattern, pattern)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.HospitalID != nil {
		query = query.Where("hospital_id = ?", *filter.HospitalID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("bill_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("bill_date <= ?", *filter.ToDate)
	}
	if filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(), openBillStatuses)
	}
	return query
}

func applyPagination(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, allowedSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func toDomainBills(billModels []models.BillModel) []*billing.Bill {
	bills := make([]*billing.Bill, len(billModels))
	for i := range billModels {
		bills[i] = billModels[i].ToDomain()
	}
	return bills
}

// Ensure GormBillRepository implements billing.BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
