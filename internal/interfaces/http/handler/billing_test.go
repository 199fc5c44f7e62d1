package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	billingapp "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/directory"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/hms/backend/internal/interfaces/http/middleware"
)

// MockBillRepository implements billing.BillRepository for testing
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if bill := args.Get(0); bill != nil {
		return bill.(*billing.Bill), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBillRepository) FindByNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	args := m.Called(ctx, billNumber)
	if bill := args.Get(0); bill != nil {
		return bill.(*billing.Bill), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBillRepository) List(ctx context.Context, filter billing.BillFilter) (shared.Paginated[*billing.Bill], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*billing.Bill]), args.Error(1)
}

func (m *MockBillRepository) FindOverdue(ctx context.Context, now time.Time, filter shared.Filter) (shared.Paginated[*billing.Bill], error) {
	args := m.Called(ctx, now, filter)
	return args.Get(0).(shared.Paginated[*billing.Bill]), args.Error(1)
}

func (m *MockBillRepository) GenerateBillNumber(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

// MockServiceRepository implements catalog.ServiceRepository for testing
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ServiceDefinition, error) {
	args := m.Called(ctx, id)
	if svc := args.Get(0); svc != nil {
		return svc.(*catalog.ServiceDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockServiceRepository) FindByCode(ctx context.Context, hospitalID uuid.UUID, serviceCode string) (*catalog.ServiceDefinition, error) {
	args := m.Called(ctx, hospitalID, serviceCode)
	if svc := args.Get(0); svc != nil {
		return svc.(*catalog.ServiceDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context, filter catalog.ServiceFilter) (shared.Paginated[*catalog.ServiceDefinition], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*catalog.ServiceDefinition]), args.Error(1)
}

// MockPatientRepository implements directory.PatientRepository for testing
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Patient, error) {
	args := m.Called(ctx, id)
	if patient := args.Get(0); patient != nil {
		return patient.(*directory.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPatientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockHospitalRepository implements directory.HospitalRepository for testing
type MockHospitalRepository struct {
	mock.Mock
}

func (m *MockHospitalRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Hospital, error) {
	args := m.Called(ctx, id)
	if hospital := args.Get(0); hospital != nil {
		return hospital.(*directory.Hospital), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHospitalRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type billingTestEnv struct {
	router       *gin.Engine
	billRepo     *MockBillRepository
	serviceRepo  *MockServiceRepository
	patientRepo  *MockPatientRepository
	hospitalRepo *MockHospitalRepository
}

func setupBillingRouter(t *testing.T) *billingTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	env := &billingTestEnv{
		billRepo:     new(MockBillRepository),
		serviceRepo:  new(MockServiceRepository),
		patientRepo:  new(MockPatientRepository),
		hospitalRepo: new(MockHospitalRepository),
	}

	service := billingapp.NewBillService(env.billRepo, env.serviceRepo, env.patientRepo, env.hospitalRepo, zap.NewNop())
	handler := NewBillingHandler(service)

	env.router = gin.New()
	api := env.router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return env
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func consultationService(t *testing.T, hospitalID uuid.UUID) *catalog.ServiceDefinition {
	t.Helper()
	svc, err := catalog.NewServiceDefinition(
		hospitalID, "CONS-GEN", "General Consultation",
		catalog.ServiceTypeConsultation,
		decimal.NewFromInt(500), decimal.NewFromInt(18),
	)
	require.NoError(t, err)
	return svc
}

func pendingBill(t *testing.T) *billing.Bill {
	t.Helper()
	item, err := billing.NewBillItem(
		uuid.New(), "General Consultation", catalog.ServiceTypeConsultation,
		valueobject.NewMoneyINR(decimal.NewFromInt(500)), 1, decimal.NewFromInt(18), decimal.Zero,
	)
	require.NoError(t, err)

	now := time.Now()
	bill, err := billing.NewBill(
		"BILL-20260901-00001",
		uuid.New(), "Asha Rao",
		uuid.New(), "City General",
		now, now.Add(14*24*time.Hour),
		[]billing.BillItem{item}, "",
	)
	require.NoError(t, err)
	bill.ClearDomainEvents()
	return bill
}

func TestBillingHandler_Create(t *testing.T) {
	t.Run("creates a bill and returns 201", func(t *testing.T) {
		env := setupBillingRouter(t)

		patientID := uuid.New()
		hospitalID := uuid.New()
		svc := consultationService(t, hospitalID)

		patient := &directory.Patient{BaseEntity: shared.NewBaseEntity(), FullName: "Asha Rao", HospitalID: hospitalID, IsActive: true}
		patient.ID = patientID
		hospital := &directory.Hospital{BaseEntity: shared.NewBaseEntity(), Name: "City General", IsActive: true}
		hospital.ID = hospitalID

		env.patientRepo.On("FindByID", mock.Anything, patientID).Return(patient, nil)
		env.hospitalRepo.On("FindByID", mock.Anything, hospitalID).Return(hospital, nil)
		env.serviceRepo.On("FindByID", mock.Anything, svc.ID).Return(svc, nil)
		env.billRepo.On("GenerateBillNumber", mock.Anything, mock.Anything).Return("BILL-20260901-00001", nil)
		env.billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills", gin.H{
			"patient_id":  patientID.String(),
			"hospital_id": hospitalID.String(),
			"due_date":    time.Now().Add(14 * 24 * time.Hour).Format(time.RFC3339),
			"items": []gin.H{
				{"service_id": svc.ID.String(), "quantity": 1},
			},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, "BILL-20260901-00001", data["bill_number"])
		assert.Equal(t, "590.00", data["total_amount"])
		assert.Equal(t, "PENDING", data["status"])
	})

	t.Run("rejects a bill without items", func(t *testing.T) {
		env := setupBillingRouter(t)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills", gin.H{
			"patient_id":  uuid.New().String(),
			"hospital_id": uuid.New().String(),
			"due_date":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			"items":       []gin.H{},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for an unknown patient", func(t *testing.T) {
		env := setupBillingRouter(t)

		patientID := uuid.New()
		env.patientRepo.On("FindByID", mock.Anything, patientID).Return(nil, shared.ErrNotFound)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills", gin.H{
			"patient_id":  patientID.String(),
			"hospital_id": uuid.New().String(),
			"due_date":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			"items": []gin.H{
				{"service_id": uuid.New().String(), "quantity": 1},
			},
		})

		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})
}

func TestBillingHandler_Get(t *testing.T) {
	t.Run("returns the bill", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

		w := performRequest(env.router, http.MethodGet, "/api/v1/bills/"+bill.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, bill.BillNumber, data["bill_number"])
	})

	t.Run("returns 404 for a missing bill", func(t *testing.T) {
		env := setupBillingRouter(t)

		id := uuid.New()
		env.billRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := performRequest(env.router, http.MethodGet, "/api/v1/bills/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for a malformed ID", func(t *testing.T) {
		env := setupBillingRouter(t)

		w := performRequest(env.router, http.MethodGet, "/api/v1/bills/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBillingHandler_AddPayment(t *testing.T) {
	t.Run("records a payment", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
		env.billRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/payments", gin.H{
			"amount":         300.00,
			"payment_method": "CASH",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "PARTIALLY_PAID", data["status"])
		assert.Equal(t, "290.00", data["balance_amount"])
	})

	t.Run("rejects an overpayment with 422", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/payments", gin.H{
			"amount":         590.01,
			"payment_method": "CASH",
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, "OVERPAYMENT", resp.Error.Code)
		env.billRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("maps a concurrency conflict to 409", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
		env.billRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/payments", gin.H{
			"amount":         100.00,
			"payment_method": "CASH",
		})

		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, "CONCURRENCY_CONFLICT", resp.Error.Code)
	})

	t.Run("rejects a card payment without a reference", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

		w := performRequest(env.router, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/payments", gin.H{
			"amount":         100.00,
			"payment_method": "CREDIT_CARD",
		})

		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, "MISSING_REFERENCE", resp.Error.Code)
	})
}

func TestBillingHandler_UpdateStatus(t *testing.T) {
	t.Run("cancels a bill", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		env.billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
		env.billRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		w := performRequest(env.router, http.MethodPut, "/api/v1/bills/"+bill.ID.String()+"/status", gin.H{
			"status": "CANCELLED",
			"reason": "Duplicate registration",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "CANCELLED", data["status"])
	})

	t.Run("rejects direct transitions to derived statuses", func(t *testing.T) {
		env := setupBillingRouter(t)

		w := performRequest(env.router, http.MethodPut, "/api/v1/bills/"+uuid.New().String()+"/status", gin.H{
			"status": "PAID",
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
	})
}

func TestBillingHandler_List(t *testing.T) {
	t.Run("lists bills with pagination meta", func(t *testing.T) {
		env := setupBillingRouter(t)

		bill := pendingBill(t)
		page := shared.NewPaginated([]*billing.Bill{bill}, 1, 1, 20)
		env.billRepo.On("List", mock.Anything, mock.Anything).Return(page, nil)

		w := performRequest(env.router, http.MethodGet, "/api/v1/bills?status=PENDING", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("rejects an invalid status filter", func(t *testing.T) {
		env := setupBillingRouter(t)

		w := performRequest(env.router, http.MethodGet, "/api/v1/bills?status=BOGUS", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("filters by patient", func(t *testing.T) {
		env := setupBillingRouter(t)

		patientID := uuid.New()
		page := shared.NewPaginated([]*billing.Bill{}, 0, 1, 20)
		env.billRepo.On("List", mock.Anything, mock.MatchedBy(func(filter billing.BillFilter) bool {
			return filter.PatientID != nil && *filter.PatientID == patientID
		})).Return(page, nil)

		w := performRequest(env.router, http.MethodGet, fmt.Sprintf("/api/v1/bills/patient/%s", patientID), nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env.billRepo.AssertExpectations(t)
	})
}

func TestBillingHandler_ListOverdue(t *testing.T) {
	env := setupBillingRouter(t)

	bill := pendingBill(t)
	page := shared.NewPaginated([]*billing.Bill{bill}, 1, 1, 20)
	env.billRepo.On("FindOverdue", mock.Anything, mock.Anything, mock.Anything).Return(page, nil)

	w := performRequest(env.router, http.MethodGet, "/api/v1/bills/overdue", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}
