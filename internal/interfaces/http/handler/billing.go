package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// BillingHandler handles bill-related API endpoints
type BillingHandler struct {
	BaseHandler
	billService *billingapp.BillService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billService *billingapp.BillService) *BillingHandler {
	return &BillingHandler{
		billService: billService,
	}
}

// RegisterRoutes registers billing routes on the given group
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bills := rg.Group("/bills")
	{
		bills.POST("", h.Create)
		bills.GET("", h.List)
		bills.GET("/overdue", h.ListOverdue)
		bills.GET("/number/:billNumber", h.GetByNumber)
		bills.GET("/patient/:id", h.ListByPatient)
		bills.GET("/hospital/:id", h.ListByHospital)
		bills.GET("/:id", h.Get)
		bills.POST("/:id/payments", h.AddPayment)
		bills.PUT("/:id/status", h.UpdateStatus)
	}
}

// CreateBillRequest represents a request to create a new bill
// @Description Request body for creating a new bill
type CreateBillRequest struct {
	PatientID  string                  `json:"patient_id" binding:"required,uuid"`
	HospitalID string                  `json:"hospital_id" binding:"required,uuid"`
	BillDate   *time.Time              `json:"bill_date"`
	DueDate    time.Time               `json:"due_date" binding:"required"`
	Items      []CreateBillItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string                  `json:"notes" binding:"max=1000"`
}

// CreateBillItemRequest represents a line item in the create bill request
// @Description Bill line item for creation
type CreateBillItemRequest struct {
	ServiceID          string   `json:"service_id" binding:"required,uuid"`
	Quantity           int64    `json:"quantity" binding:"required,gt=0"`
	DiscountPercentage *float64 `json:"discount_percentage" binding:"omitempty,gte=0,lte=100"`
}

// AddPaymentRequest represents a request to record a payment against a bill
// @Description Request body for recording a payment
type AddPaymentRequest struct {
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	PaymentDate *time.Time `json:"payment_date"`
	Method      string     `json:"payment_method" binding:"required,paymentmethod"`
	Reference   string     `json:"reference_number" binding:"max=100"`
	Notes       string     `json:"notes" binding:"max=500"`
}

// UpdateStatusRequest represents a request to change a bill's status.
// Only cancellation is accepted; the remaining statuses are derived from
// payments and the due date.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,billstatus"`
	Reason string `json:"reason" binding:"max=500"`
}

// ListBillsRequest represents the query parameters for bill listing
type ListBillsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`

	PatientID  string `form:"patient_id" binding:"omitempty,uuid"`
	HospitalID string `form:"hospital_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
	FromDate   string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Overdue    bool   `form:"overdue"`
}

// BillItemResponse represents a bill line item in API responses
type BillItemResponse struct {
	ServiceID          string `json:"service_id"`
	ServiceName        string `json:"service_name"`
	ServiceType        string `json:"service_type"`
	Quantity           int64  `json:"quantity"`
	UnitPrice          string `json:"unit_price"`
	TaxPercentage      string `json:"tax_percentage"`
	DiscountPercentage string `json:"discount_percentage"`
	LineSubtotal       string `json:"line_subtotal"`
	DiscountAmount     string `json:"discount_amount"`
	TaxableAmount      string `json:"taxable_amount"`
	TaxAmount          string `json:"tax_amount"`
	TotalAmount        string `json:"total_amount"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Method      string    `json:"payment_method"`
	Reference   string    `json:"reference_number,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID             string             `json:"id"`
	BillNumber     string             `json:"bill_number"`
	PatientID      string             `json:"patient_id"`
	PatientName    string             `json:"patient_name"`
	HospitalID     string             `json:"hospital_id"`
	HospitalName   string             `json:"hospital_name"`
	BillDate       time.Time          `json:"bill_date"`
	DueDate        time.Time          `json:"due_date"`
	Items          []BillItemResponse `json:"items"`
	Payments       []PaymentResponse  `json:"payments"`
	SubTotal       string             `json:"sub_total"`
	DiscountAmount string             `json:"discount_amount"`
	TaxAmount      string             `json:"tax_amount"`
	TotalAmount    string             `json:"total_amount"`
	PaidAmount     string             `json:"paid_amount"`
	BalanceAmount  string             `json:"balance_amount"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason   string             `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Version        int                `json:"version"`
}

// Create godoc
// @Summary      Create a new bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Router       /bills [post]
func (h *BillingHandler) Create(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID format")
		return
	}
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		h.BadRequest(c, "Invalid hospital ID format")
		return
	}

	billDate := time.Now()
	if req.BillDate != nil {
		billDate = *req.BillDate
	}

	appReq := billingapp.CreateBillRequest{
		PatientID:  patientID,
		HospitalID: hospitalID,
		BillDate:   billDate,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	}
	for _, item := range req.Items {
		serviceID, err := uuid.Parse(item.ServiceID)
		if err != nil {
			h.BadRequest(c, "Invalid service ID format")
			return
		}
		itemReq := billingapp.BillItemRequest{
			ServiceID: serviceID,
			Quantity:  item.Quantity,
		}
		if item.DiscountPercentage != nil {
			d := decimal.NewFromFloat(*item.DiscountPercentage)
			itemReq.DiscountPercentage = &d
		}
		appReq.Items = append(appReq.Items, itemReq)
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBillResponse(bill))
}

// Get godoc
// @Summary      Get a bill by ID
// @Tags         bills
// @Produce      json
// @Router       /bills/{id} [get]
func (h *BillingHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// GetByNumber godoc
// @Summary      Get a bill by its bill number
// @Tags         bills
// @Produce      json
// @Router       /bills/number/{billNumber} [get]
func (h *BillingHandler) GetByNumber(c *gin.Context) {
	billNumber := c.Param("billNumber")
	if billNumber == "" {
		h.BadRequest(c, "Bill number is required")
		return
	}

	bill, err := h.billService.GetBillByNumber(c.Request.Context(), billNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// AddPayment godoc
// @Summary      Record a payment against a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Router       /bills/{id}/payments [post]
func (h *BillingHandler) AddPayment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	bill, err := h.billService.AddPayment(c.Request.Context(), id, billingapp.AddPaymentRequest{
		Amount:      valueobject.NewMoneyINRFromFloat(req.Amount),
		PaymentDate: paymentDate,
		Method:      billing.PaymentMethod(req.Method),
		Reference:   req.Reference,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// UpdateStatus godoc
// @Summary      Update a bill's status (cancellation only)
// @Tags         bills
// @Accept       json
// @Produce      json
// @Router       /bills/{id}/status [put]
func (h *BillingHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.UpdateStatus(c.Request.Context(), id, billing.BillStatus(req.Status), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// List godoc
// @Summary      List bills with filtering and pagination
// @Tags         bills
// @Produce      json
// @Router       /bills [get]
func (h *BillingHandler) List(c *gin.Context) {
	filter, ok := h.parseBillFilter(c)
	if !ok {
		return
	}

	result, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toBillResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// ListByPatient godoc
// @Summary      List bills for a patient
// @Tags         bills
// @Produce      json
// @Router       /bills/patient/{id} [get]
func (h *BillingHandler) ListByPatient(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	filter, ok := h.parseBillFilter(c)
	if !ok {
		return
	}

	result, err := h.billService.ListByPatient(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toBillResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// ListByHospital godoc
// @Summary      List bills for a hospital
// @Tags         bills
// @Produce      json
// @Router       /bills/hospital/{id} [get]
func (h *BillingHandler) ListByHospital(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	filter, ok := h.parseBillFilter(c)
	if !ok {
		return
	}

	result, err := h.billService.ListByHospital(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toBillResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// ListOverdue godoc
// @Summary      List open bills past their due date
// @Tags         bills
// @Produce      json
// @Router       /bills/overdue [get]
func (h *BillingHandler) ListOverdue(c *gin.Context) {
	var listReq ListBillsRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.billService.ListOverdue(c.Request.Context(), listReq.toBaseFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toBillResponses(result.Items), result.Total, result.Page, result.PageSize)
}

func (h *BillingHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BillingHandler) parseBillFilter(c *gin.Context) (billing.BillFilter, bool) {
	var req ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return billing.BillFilter{}, false
	}

	filter := billing.BillFilter{
		Filter:  req.toBaseFilter(),
		Overdue: req.Overdue,
	}

	if req.PatientID != "" {
		id, err := uuid.Parse(req.PatientID)
		if err != nil {
			h.BadRequest(c, "Invalid patient ID format")
			return billing.BillFilter{}, false
		}
		filter.PatientID = &id
	}
	if req.HospitalID != "" {
		id, err := uuid.Parse(req.HospitalID)
		if err != nil {
			h.BadRequest(c, "Invalid hospital ID format")
			return billing.BillFilter{}, false
		}
		filter.HospitalID = &id
	}
	if req.Status != "" {
		status := billing.BillStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid bill status")
			return billing.BillFilter{}, false
		}
		filter.Status = &status
	}
	if req.FromDate != "" {
		from, _ := time.Parse("2006-01-02", req.FromDate)
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, _ := time.Parse("2006-01-02", req.ToDate)
		// Inclusive upper bound covering the whole day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	return filter, true
}

func (r ListBillsRequest) toBaseFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}
	filter.Search = r.Search
	return filter
}

func toBillResponse(bill *billing.Bill) BillResponse {
	items := make([]BillItemResponse, len(bill.Items))
	for i, item := range bill.Items {
		items[i] = BillItemResponse{
			ServiceID:          item.ServiceID.String(),
			ServiceName:        item.ServiceName,
			ServiceType:        string(item.ServiceType),
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice.StringFixed(2),
			TaxPercentage:      item.TaxPercentage.String(),
			DiscountPercentage: item.DiscountPercentage.String(),
			LineSubtotal:       item.LineSubtotal.StringFixed(2),
			DiscountAmount:     item.DiscountAmount.StringFixed(2),
			TaxableAmount:      item.TaxableAmount.StringFixed(2),
			TaxAmount:          item.TaxAmount.StringFixed(2),
			TotalAmount:        item.TotalAmount.StringFixed(2),
		}
	}

	payments := make([]PaymentResponse, len(bill.Payments))
	for i, payment := range bill.Payments {
		payments[i] = PaymentResponse{
			ID:          payment.ID.String(),
			Amount:      payment.Amount.StringFixed(2),
			PaymentDate: payment.PaymentDate,
			Method:      string(payment.Method),
			Reference:   payment.Reference,
			Notes:       payment.Notes,
			RecordedAt:  payment.RecordedAt,
		}
	}

	return BillResponse{
		ID:             bill.ID.String(),
		BillNumber:     bill.BillNumber,
		PatientID:      bill.PatientID.String(),
		PatientName:    bill.PatientName,
		HospitalID:     bill.HospitalID.String(),
		HospitalName:   bill.HospitalName,
		BillDate:       bill.BillDate,
		DueDate:        bill.DueDate,
		Items:          items,
		Payments:       payments,
		SubTotal:       bill.SubTotal.StringFixed(2),
		DiscountAmount: bill.DiscountAmount.StringFixed(2),
		TaxAmount:      bill.TaxAmount.StringFixed(2),
		TotalAmount:    bill.TotalAmount.StringFixed(2),
		PaidAmount:     bill.PaidAmount.StringFixed(2),
		BalanceAmount:  bill.BalanceAmount.StringFixed(2),
		Status:         string(bill.Status),
		Notes:          bill.Notes,
		PaidAt:         bill.PaidAt,
		CancelledAt:    bill.CancelledAt,
		CancelReason:   bill.CancelReason,
		CreatedAt:      bill.CreatedAt,
		UpdatedAt:      bill.UpdatedAt,
		Version:        bill.Version,
	}
}

func toBillResponses(bills []*billing.Bill) []BillResponse {
	responses := make([]BillResponse, len(bills))
	for i, bill := range bills {
		responses[i] = toBillResponse(bill)
	}
	return responses
}
