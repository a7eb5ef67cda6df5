package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supply-service/controllers"
	"supply-service/middleware"
	"supply-service/models"
	"supply-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock SupplyRequestService ---

type mockRequestService struct {
	submitFn    func(ctx context.Context, requesterID uuid.UUID, req *models.CreateSupplyRequest) (*models.SupplyRequest, *services.ServiceError)
	approveFn   func(ctx context.Context, id, approverID uuid.UUID) (*models.SupplyRequest, *services.ServiceError)
	rejectFn    func(ctx context.Context, id, actorID uuid.UUID, reason string, byAdmin bool) (*models.SupplyRequest, *services.ServiceError)
	forwardFn   func(ctx context.Context, id, actorID, adminID uuid.UUID, comments string) (*models.SupplyRequest, *services.ServiceError)
	assignFn    func(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *services.ServiceError)
	acceptFn    func(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *services.ServiceError)
	fulfillFn   func(ctx context.Context, id, adminID uuid.UUID, notes string) (*models.SupplyRequest, *services.ServiceError)
	scheduleFn  func(ctx context.Context, id, actorID uuid.UUID, pickupNotes string) (*models.SupplyRequest, *services.ServiceError)
	notifyFn    func(ctx context.Context, id, actorID uuid.UUID) (*models.SupplyRequest, *services.ServiceError)
	cancelFn    func(ctx context.Context, id, requesterID uuid.UUID, reason string) (*models.SupplyRequest, *services.ServiceError)
	rejLineFn   func(ctx context.Context, requestID, lineID, actorID uuid.UUID, reason string) (*models.SupplyRequestItem, *services.ServiceError)
	getFn       func(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, *services.ServiceError)
	listMineFn  func(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, *services.ServiceError)
	listAllFn   func(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, *services.ServiceError)
	overviewFn  func(ctx context.Context, months int) ([]models.ItemUsage, *services.ServiceError)
	restockFn   func(ctx context.Context, itemID uuid.UUID, quantity int) (*models.Item, *services.ServiceError)
}

func (m *mockRequestService) Submit(ctx context.Context, requesterID uuid.UUID, req *models.CreateSupplyRequest) (*models.SupplyRequest, *services.ServiceError) {
	return m.submitFn(ctx, requesterID, req)
}
func (m *mockRequestService) Approve(ctx context.Context, id, approverID uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
	return m.approveFn(ctx, id, approverID)
}
func (m *mockRequestService) Reject(ctx context.Context, id, actorID uuid.UUID, reason string, byAdmin bool) (*models.SupplyRequest, *services.ServiceError) {
	return m.rejectFn(ctx, id, actorID, reason, byAdmin)
}
func (m *mockRequestService) ForwardToAdmin(ctx context.Context, id, actorID, adminID uuid.UUID, comments string) (*models.SupplyRequest, *services.ServiceError) {
	return m.forwardFn(ctx, id, actorID, adminID, comments)
}
func (m *mockRequestService) AssignToAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
	return m.assignFn(ctx, id, adminID)
}
func (m *mockRequestService) AcceptByAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
	return m.acceptFn(ctx, id, adminID)
}
func (m *mockRequestService) Fulfill(ctx context.Context, id, adminID uuid.UUID, notes string) (*models.SupplyRequest, *services.ServiceError) {
	return m.fulfillFn(ctx, id, adminID, notes)
}
func (m *mockRequestService) SchedulePickup(ctx context.Context, id, actorID uuid.UUID, pickupNotes string) (*models.SupplyRequest, *services.ServiceError) {
	return m.scheduleFn(ctx, id, actorID, pickupNotes)
}
func (m *mockRequestService) NotifyReadyForPickup(ctx context.Context, id, actorID uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
	return m.notifyFn(ctx, id, actorID)
}
func (m *mockRequestService) Cancel(ctx context.Context, id, requesterID uuid.UUID, reason string) (*models.SupplyRequest, *services.ServiceError) {
	return m.cancelFn(ctx, id, requesterID, reason)
}
func (m *mockRequestService) RejectLine(ctx context.Context, requestID, lineID, actorID uuid.UUID, reason string) (*models.SupplyRequestItem, *services.ServiceError) {
	return m.rejLineFn(ctx, requestID, lineID, actorID, reason)
}
func (m *mockRequestService) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockRequestService) ListByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, *services.ServiceError) {
	return m.listMineFn(ctx, requesterID, page, limit)
}
func (m *mockRequestService) ListAll(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, *services.ServiceError) {
	return m.listAllFn(ctx, page, limit)
}
func (m *mockRequestService) StockOverview(ctx context.Context, months int) ([]models.ItemUsage, *services.ServiceError) {
	return m.overviewFn(ctx, months)
}
func (m *mockRequestService) Restock(ctx context.Context, itemID uuid.UUID, quantity int) (*models.Item, *services.ServiceError) {
	return m.restockFn(ctx, itemID, quantity)
}

// --- Helpers ---

var testUserID = uuid.New()

func setupRouter(svc services.SupplyRequestService, role string) *gin.Engine {
	r := gin.New()
	sc := controllers.NewSupplyRequestController(svc)

	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, testUserID)
		c.Set(middleware.RoleContextKey, role)
		c.Next()
	})

	r.POST("/supply-requests", sc.Submit)
	r.GET("/supply-requests/my-requests", sc.MyRequests)
	r.GET("/supply-requests/:id", sc.GetByID)
	r.POST("/supply-requests/:id/approve", sc.Approve)
	r.POST("/supply-requests/:id/reject", sc.Reject)
	r.POST("/supply-requests/:id/fulfill", sc.Fulfill)
	r.POST("/supply-requests/:id/schedule-pickup", sc.SchedulePickup)
	r.DELETE("/supply-requests/:id/cancel", sc.Cancel)
	r.POST("/supply-requests/:id/items/:lineId/reject", sc.RejectLine)
	r.POST("/items/:id/restock", sc.Restock)
	return r
}

func pendingRequest(id uuid.UUID) *models.SupplyRequest {
	return &models.SupplyRequest{
		ID:            id,
		RequestNumber: "SR-20260830-A1B2C3",
		ItemID:        uuid.New(),
		RequesterID:   testUserID,
		Quantity:      5,
		Urgency:       models.UrgencyMedium,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	}
}

// --- Tests ---

func TestController_Submit_Success(t *testing.T) {
	svc := &mockRequestService{
		submitFn: func(_ context.Context, requesterID uuid.UUID, req *models.CreateSupplyRequest) (*models.SupplyRequest, *services.ServiceError) {
			assert.Equal(t, testUserID, requesterID)
			out := pendingRequest(uuid.New())
			out.Quantity = req.Quantity
			return out, nil
		},
	}
	r := setupRouter(svc, middleware.RoleUser)

	body, _ := json.Marshal(models.CreateSupplyRequest{
		ItemID:   uuid.New().String(),
		Quantity: 5,
		Urgency:  models.UrgencyMedium,
		Notes:    "office restock",
	})
	req, _ := http.NewRequest(http.MethodPost, "/supply-requests", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp["request"])
}

func TestController_Submit_NonPositiveQuantity(t *testing.T) {
	svc := &mockRequestService{}
	r := setupRouter(svc, middleware.RoleUser)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests",
		bytes.NewBufferString(`{"item_id":"`+uuid.New().String()+`","quantity":0,"urgency":"low"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_GetByID_InvalidUUID(t *testing.T) {
	svc := &mockRequestService{}
	r := setupRouter(svc, middleware.RoleUser)

	req, _ := http.NewRequest(http.MethodGet, "/supply-requests/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_Approve_InvalidStateMapsToConflict(t *testing.T) {
	svc := &mockRequestService{
		approveFn: func(_ context.Context, _, _ uuid.UUID) (*models.SupplyRequest, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusConflict, Code: "invalid_state", Message: "request is fulfilled, not pending"}
		},
	}
	r := setupRouter(svc, middleware.RoleSupply)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "invalid_state", resp["code"])
}

func TestController_Reject_PassesAdminFlag(t *testing.T) {
	var gotByAdmin bool
	svc := &mockRequestService{
		rejectFn: func(_ context.Context, id, _ uuid.UUID, reason string, byAdmin bool) (*models.SupplyRequest, *services.ServiceError) {
			gotByAdmin = byAdmin
			out := pendingRequest(id)
			out.Status = models.StatusRejected
			out.RejectionReason = reason
			return out, nil
		},
	}
	r := setupRouter(svc, middleware.RoleAdmin)

	body := bytes.NewBufferString(`{"reason":"budget exhausted"}`)
	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/reject", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotByAdmin)
}

func TestController_Reject_MissingReason(t *testing.T) {
	svc := &mockRequestService{}
	r := setupRouter(svc, middleware.RoleSupply)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/reject",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_Fulfill_EmptyBodyAllowed(t *testing.T) {
	svc := &mockRequestService{
		fulfillFn: func(_ context.Context, id, _ uuid.UUID, notes string) (*models.SupplyRequest, *services.ServiceError) {
			assert.Empty(t, notes)
			out := pendingRequest(id)
			out.Status = models.StatusFulfilled
			return out, nil
		},
	}
	r := setupRouter(svc, middleware.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/fulfill", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_Fulfill_InsufficientStock(t *testing.T) {
	svc := &mockRequestService{
		fulfillFn: func(_ context.Context, _, _ uuid.UUID, _ string) (*models.SupplyRequest, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: http.StatusConflict, Code: "insufficient_stock", Message: "only 3 remaining"}
		},
	}
	r := setupRouter(svc, middleware.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/fulfill", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "insufficient_stock", resp["code"])
}

func TestController_Fulfill_MalformedBodyRejected(t *testing.T) {
	svc := &mockRequestService{}
	r := setupRouter(svc, middleware.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/fulfill",
		bytes.NewBufferString(`{"notes":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_SchedulePickup_EmptyBodyAllowed(t *testing.T) {
	svc := &mockRequestService{
		scheduleFn: func(_ context.Context, id, _ uuid.UUID, pickupNotes string) (*models.SupplyRequest, *services.ServiceError) {
			assert.Empty(t, pickupNotes)
			out := pendingRequest(id)
			out.Status = models.StatusReadyForPickup
			return out, nil
		},
	}
	r := setupRouter(svc, middleware.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/supply-requests/"+uuid.New().String()+"/schedule-pickup", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_Cancel_MissingReason(t *testing.T) {
	svc := &mockRequestService{}
	r := setupRouter(svc, middleware.RoleUser)

	req, _ := http.NewRequest(http.MethodDelete, "/supply-requests/"+uuid.New().String()+"/cancel",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_MyRequests_Pagination(t *testing.T) {
	var gotPage, gotLimit int
	svc := &mockRequestService{
		listMineFn: func(_ context.Context, _ uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, *services.ServiceError) {
			gotPage, gotLimit = page, limit
			return []models.SupplyRequest{*pendingRequest(uuid.New())}, 1, nil
		},
	}
	r := setupRouter(svc, middleware.RoleUser)

	req, _ := http.NewRequest(http.MethodGet, "/supply-requests/my-requests?page=2&page_size=500", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 100, gotLimit)
}

func TestController_RejectLine_Success(t *testing.T) {
	lineID := uuid.New()
	svc := &mockRequestService{
		rejLineFn: func(_ context.Context, _, gotLine, _ uuid.UUID, reason string) (*models.SupplyRequestItem, *services.ServiceError) {
			assert.Equal(t, lineID, gotLine)
			return &models.SupplyRequestItem{
				ID:              gotLine,
				Status:          models.LineStatusRejected,
				RejectionReason: reason,
			}, nil
		},
	}
	r := setupRouter(svc, middleware.RoleSupply)

	body := bytes.NewBufferString(`{"reason":"substitute available"}`)
	req, _ := http.NewRequest(http.MethodPost,
		"/supply-requests/"+uuid.New().String()+"/items/"+lineID.String()+"/reject", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp["line"])
}

func TestController_Restock_Success(t *testing.T) {
	itemID := uuid.New()
	svc := &mockRequestService{
		restockFn: func(_ context.Context, gotID uuid.UUID, quantity int) (*models.Item, *services.ServiceError) {
			assert.Equal(t, itemID, gotID)
			return &models.Item{ID: gotID, Name: "Bond paper", Quantity: 100 + quantity}, nil
		},
	}
	r := setupRouter(svc, middleware.RoleSupply)

	body := bytes.NewBufferString(`{"quantity":50}`)
	req, _ := http.NewRequest(http.MethodPost, "/items/"+itemID.String()+"/restock", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp["item"])
}
