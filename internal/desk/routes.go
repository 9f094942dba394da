package desk

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customerflow"
	"github.com/imrishuroy/go-tailor-orderflow/internal/draft"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
	"github.com/imrishuroy/go-tailor-orderflow/internal/payments"
	"github.com/imrishuroy/go-tailor-orderflow/internal/submission"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// NewRouter exposes the desk over HTTP for the shop front end.
func NewRouter(d *Desk) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/notice", func(c *gin.Context) { respond(c, http.StatusOK, d.Notice()) })
	r.DELETE("/notice", func(c *gin.Context) {
		d.DismissNotice()
		c.Status(http.StatusNoContent)
	})

	h := &handler{desk: d}
	h.registerDrafts(r.Group("/drafts"))
	h.registerCustomers(r.Group("/customers"))
	h.registerPayments(r.Group("/payments"))
	r.GET("/dashboard", h.dashboard)
	r.GET("/orders", h.recentOrders)
	return r
}

type handler struct {
	desk *Desk
}

func (h *handler) registerDrafts(g *gin.RouterGroup) {
	g.POST("", func(c *gin.Context) { respond(c, http.StatusCreated, h.desk.OpenDraft().View()) })
	g.GET("/:id", h.withWorkspace(func(c *gin.Context, ws *Workspace) {
		respond(c, http.StatusOK, ws.View())
	}))
	g.DELETE("/:id", func(c *gin.Context) {
		if err := h.desk.CloseDraft(c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	g.POST("/:id/reset", h.withWorkspace(func(c *gin.Context, ws *Workspace) {
		respond(c, http.StatusOK, ws.Reset())
	}))
	g.PUT("/:id/customer", h.withWorkspace(h.selectCustomer))
	g.PATCH("/:id/fields", h.withWorkspace(h.setFields))
	g.POST("/:id/items", h.withWorkspace(func(c *gin.Context, ws *Workspace) {
		v, _ := ws.AddItem()
		respond(c, http.StatusCreated, v)
	}))
	g.PATCH("/:id/items/:itemId", h.withWorkspace(h.updateItem))
	g.DELETE("/:id/items/:itemId", h.withWorkspace(func(c *gin.Context, ws *Workspace) {
		v, removed := ws.RemoveItem(c.Param("itemId"))
		if !removed {
			fail(c, http.StatusConflict, "item_not_removed", "The last item cannot be removed")
			return
		}
		respond(c, http.StatusOK, v)
	}))
	g.PATCH("/:id/measurements", h.withWorkspace(h.setMeasurements))
	g.PUT("/:id/assignment", h.withWorkspace(h.assign))
	g.POST("/:id/submit", h.withWorkspace(h.submit))
	g.POST("/:id/quick-customer", h.withWorkspace(h.quickCustomer))
	g.DELETE("/:id/quick-customer", h.withWorkspace(func(c *gin.Context, ws *Workspace) {
		respond(c, http.StatusOK, ws.CancelQuickCreate())
	}))
}

func (h *handler) withWorkspace(fn func(*gin.Context, *Workspace)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := h.desk.Workspace(c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		fn(c, ws)
	}
}

type selectCustomerRequest struct {
	CustomerID string `json:"customerId"`
}

func (h *handler) selectCustomer(c *gin.Context, ws *Workspace) {
	var req selectCustomerRequest
	if !bind(c, &req) {
		return
	}
	v, err := ws.SelectCustomer(c.Request.Context(), req.CustomerID)
	if err != nil {
		writeErr(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// fieldsRequest sets only the fields present in the body.
type fieldsRequest struct {
	DeliveryDate   *string `json:"deliveryDate"`
	AdvancePayment *string `json:"advancePayment"`
	Notes          *string `json:"notes"`
}

func (h *handler) setFields(c *gin.Context, ws *Workspace) {
	var req fieldsRequest
	if !bind(c, &req) {
		return
	}
	var v View
	for _, f := range []struct {
		field draft.Field
		value *string
	}{
		{draft.FieldDeliveryDate, req.DeliveryDate},
		{draft.FieldAdvancePayment, req.AdvancePayment},
		{draft.FieldNotes, req.Notes},
	} {
		if f.value == nil {
			continue
		}
		var err error
		if v, err = ws.SetField(f.field, *f.value); err != nil {
			writeErr(c, err)
			return
		}
	}
	if v.ID == "" {
		v = ws.View()
	}
	respond(c, http.StatusOK, v)
}

type itemRequest struct {
	Name     *string `json:"name"`
	Quantity *string `json:"quantity"`
	Price    *string `json:"price"`
	Fabric   *string `json:"fabric"`
}

func (h *handler) updateItem(c *gin.Context, ws *Workspace) {
	var req itemRequest
	if !bind(c, &req) {
		return
	}
	id := c.Param("itemId")
	v := ws.View()
	for _, f := range []struct {
		field draft.ItemField
		value *string
	}{
		{draft.ItemName, req.Name},
		{draft.ItemQuantity, req.Quantity},
		{draft.ItemPrice, req.Price},
		{draft.ItemFabric, req.Fabric},
	} {
		if f.value == nil {
			continue
		}
		var err error
		if v, err = ws.UpdateItem(id, f.field, *f.value); err != nil {
			writeErr(c, err)
			return
		}
	}
	respond(c, http.StatusOK, v)
}

type measurementRequest struct {
	Garment string  `json:"garment"`
	Field   string  `json:"field"`
	Value   string  `json:"value"`
	Custom  *string `json:"custom"`
}

func (h *handler) setMeasurements(c *gin.Context, ws *Workspace) {
	var req measurementRequest
	if !bind(c, &req) {
		return
	}
	if req.Custom != nil {
		v := ws.SetCustomMeasurements(*req.Custom)
		if req.Garment == "" {
			respond(c, http.StatusOK, v)
			return
		}
	}
	v, err := ws.SetMeasurement(measurements.Garment(req.Garment), req.Field, req.Value)
	switch {
	case err == nil:
		respond(c, http.StatusOK, v)
	case errors.Is(err, measurements.ErrUnknownGarment), errors.Is(err, measurements.ErrUnknownField):
		writeErr(c, err)
	default:
		// the value was refused and the message is on the field
		writeErrWith(c, &apperr.ValidationError{Fields: v.Errors}, v)
	}
}

type assignRequest struct {
	Mode       string `json:"mode"`
	ItemID     string `json:"itemId"`
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
}

func (h *handler) assign(c *gin.Context, ws *Workspace) {
	var req assignRequest
	if !bind(c, &req) {
		return
	}
	v, err := ws.Assign(draft.AssignmentMode(req.Mode), req.ItemID, draft.Worker{ID: req.WorkerID, Name: req.WorkerName})
	if err != nil {
		writeErr(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *handler) submit(c *gin.Context, ws *Workspace) {
	o, v, err := ws.Submit(c.Request.Context())
	if err != nil {
		writeErrWith(c, err, v)
		return
	}
	respond(c, http.StatusCreated, gin.H{"order": o, "draft": v})
}

func (h *handler) quickCustomer(c *gin.Context, ws *Workspace) {
	var req customerRequest
	if !bind(c, &req) {
		return
	}
	if err := h.fillCustomerForm(req); err != nil {
		writeErr(c, err)
		return
	}
	v, err := ws.QuickCreateCustomer(c.Request.Context())
	if err != nil {
		writeErrWith(c, err, h.desk.Customers.View())
		return
	}
	respond(c, http.StatusCreated, v)
}

type customerRequest struct {
	Name         string               `json:"name"`
	Phone        string               `json:"phone"`
	Email        string               `json:"email"`
	Photo        *validation.FileInfo `json:"photo"`
	Measurements measurements.Flat    `json:"measurements"`
	Custom       string               `json:"customMeasurements"`
}

func (h *handler) fillCustomerForm(req customerRequest) error {
	f := h.desk.Customers
	for field, value := range map[string]string{"name": req.Name, "phone": req.Phone, "email": req.Email} {
		if err := f.SetField(field, value); err != nil {
			return err
		}
	}
	f.SetPhoto(req.Photo)
	f.SetFlatMeasurements(req.Measurements, req.Custom)
	return nil
}

func (h *handler) registerCustomers(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		if c.Query("refresh") == "true" || len(h.desk.Customers.Customers()) == 0 {
			_ = h.desk.Customers.Refresh(c.Request.Context())
		}
		respond(c, http.StatusOK, h.desk.Customers.View())
	})
	g.POST("", func(c *gin.Context) {
		var req customerRequest
		if !bind(c, &req) {
			return
		}
		if err := h.fillCustomerForm(req); err != nil {
			writeErr(c, err)
			return
		}
		created, err := h.desk.Customers.Submit(c.Request.Context())
		if err != nil {
			writeErrWith(c, err, h.desk.Customers.View())
			return
		}
		respond(c, http.StatusCreated, created)
	})
	g.DELETE("/form", func(c *gin.Context) {
		h.desk.Customers.Reset()
		respond(c, http.StatusOK, h.desk.Customers.View())
	})
}

type openPaymentRequest struct {
	OrderID string `json:"orderId"`
}

type paymentFieldsRequest struct {
	Amount *string `json:"amount"`
	Method *string `json:"method"`
	Date   *string `json:"date"`
	Note   *string `json:"note"`
}

func (h *handler) registerPayments(g *gin.RouterGroup) {
	e := h.desk.Payments
	g.GET("", func(c *gin.Context) { respond(c, http.StatusOK, e.View()) })
	g.POST("/open", func(c *gin.Context) {
		var req openPaymentRequest
		if !bind(c, &req) {
			return
		}
		if err := h.desk.OpenPayment(c.Request.Context(), req.OrderID); err != nil {
			writeErr(c, err)
			return
		}
		respond(c, http.StatusOK, e.View())
	})
	// amount is a keystroke: an over-balance value is refused and the
	// previous amount kept.
	g.POST("/amount", func(c *gin.Context) {
		var req struct {
			Amount string `json:"amount"`
		}
		if !bind(c, &req) {
			return
		}
		if err := e.TypeAmount(req.Amount); err != nil && !errors.Is(err, payments.ErrExceedsBalance) {
			writeErr(c, err)
			return
		}
		respond(c, http.StatusOK, e.View())
	})
	g.POST("/blur", func(c *gin.Context) {
		e.Blur()
		respond(c, http.StatusOK, e.View())
	})
	g.PATCH("", func(c *gin.Context) {
		var req paymentFieldsRequest
		if !bind(c, &req) {
			return
		}
		if req.Amount != nil {
			e.SetAmount(*req.Amount)
		}
		if req.Method != nil {
			e.SetMethod(*req.Method)
		}
		if req.Date != nil {
			e.SetDate(*req.Date)
		}
		if req.Note != nil {
			e.SetNote(*req.Note)
		}
		respond(c, http.StatusOK, e.View())
	})
	g.POST("/submit", func(c *gin.Context) {
		o, err := h.desk.SubmitPayment(c.Request.Context())
		if err != nil {
			writeErrWith(c, err, e.View())
			return
		}
		respond(c, http.StatusOK, o)
	})
	g.DELETE("", func(c *gin.Context) {
		e.Close()
		respond(c, http.StatusOK, e.View())
	})
}

func (h *handler) dashboard(c *gin.Context) {
	snap, err := h.desk.Dashboard.Load(c.Request.Context())
	var pd *apperr.PartialDataError
	if err != nil && !errors.As(err, &pd) {
		writeErr(c, err)
		return
	}
	respond(c, http.StatusOK, snap)
}

func (h *handler) recentOrders(c *gin.Context) {
	if err := h.desk.RefreshOrders(c.Request.Context()); err != nil {
		writeErr(c, err)
		return
	}
	respond(c, http.StatusOK, h.desk.RecentOrders())
}

func bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request_body", err.Error())
		return false
	}
	return true
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": code, "message": message})
}

func writeErr(c *gin.Context, err error) { writeErrWith(c, err, nil) }

// writeErrWith maps err onto a status and envelope; view, when set, is sent
// as data so the client can re-render the form.
func writeErrWith(c *gin.Context, err error, view interface{}) {
	body := gin.H{"success": false}
	if view != nil {
		body["data"] = view
	}
	status := http.StatusInternalServerError
	code := "internal_error"

	var (
		ve *apperr.ValidationError
		ae *apperr.AuthError
		ne *apperr.NetworkError
	)
	switch {
	case errors.As(err, &ve):
		status, code = http.StatusUnprocessableEntity, "validation_failed"
		body["fields"] = ve.Fields
	case errors.As(err, &ae):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &ne):
		status, code = http.StatusBadGateway, "backend_error"
	case errors.Is(err, submission.ErrSubmitInProgress),
		errors.Is(err, customerflow.ErrInFlight),
		errors.Is(err, payments.ErrPaymentInFlight):
		status, code = http.StatusConflict, "in_progress"
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, draft.ErrUnknownItem):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, draft.ErrUnknownField), errors.Is(err, draft.ErrUnknownMode),
		errors.Is(err, customerflow.ErrUnknownField), errors.Is(err, payments.ErrNotOpen),
		errors.Is(err, payments.ErrExceedsBalance),
		errors.Is(err, measurements.ErrUnknownGarment), errors.Is(err, measurements.ErrUnknownField):
		status, code = http.StatusBadRequest, "bad_request"
	}
	body["error"] = code
	body["message"] = apperr.Message(err, err.Error())
	// read-only calls may be retried as-is; the front end offers a Retry action
	body["retryable"] = apperr.IsRetryable(err)
	c.JSON(status, body)
}
