package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-tailor-orderflow/internal/auth"
	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// RegisterCustomersRoutes registers the customer endpoints.
func RegisterCustomersRoutes(r gin.IRoutes, d *deps) {
	r.POST("/customers", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateCustomerRequest
		if err := validation.BindAndValidate(c, &req, d.validator); err != nil {
			_ = d.metrics.Count(ctx, aws.MetricRejectedPayloads, 1, "Route", "/customers")
			return
		}

		hash, err := auth.HashPassword(req.User.Password)
		if err != nil {
			slog.Error("hash password", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to create customer")
			return
		}

		cust := customers.Customer{
			CustomerID:   uuid.NewString(),
			Name:         req.User.Name,
			Email:        req.User.Email,
			Phone:        req.User.ContactNumber,
			PasswordHash: hash,
			RoleID:       req.User.RoleID,
		}
		if m := req.MeasurementSet(); !m.IsEmpty() {
			cust.Measurements = &m
		}

		created, err := d.customers.Create(ctx, cust)
		switch {
		case errors.Is(err, customers.ErrPhoneTaken):
			fail(c, http.StatusConflict, "phone_taken", "A customer with this phone number already exists")
			return
		case err != nil:
			slog.Error("create customer", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to create customer")
			return
		}

		_ = d.metrics.Count(ctx, aws.MetricCustomersCreated, 1)
		slog.Info("customer created", "customer_id", created.CustomerID)
		c.Header("Location", "/customers/"+created.CustomerID)
		respond(c, http.StatusCreated, created)
	})

	r.GET("/customers", func(c *gin.Context) {
		list, err := d.customers.List(c.Request.Context())
		if err != nil {
			slog.Error("list customers", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load customers")
			return
		}
		if list == nil {
			list = []customers.Customer{}
		}
		respond(c, http.StatusOK, list)
	})

	r.GET("/customers/:id", func(c *gin.Context) {
		cust, err := d.customers.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("get customer", "customer_id", c.Param("id"), "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load customer")
			return
		}
		if cust == nil {
			fail(c, http.StatusNotFound, "not_found", "Customer not found")
			return
		}
		respond(c, http.StatusOK, cust)
	})
}
