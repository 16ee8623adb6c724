package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billentry/customers/internal/domain/entities"
	"github.com/billentry/customers/internal/infrastructure/logger"
	"github.com/billentry/customers/internal/ports"
)

// CustomerHandler handles customer-related requests
type CustomerHandler struct {
	service ports.CustomerService
	logger  *logger.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service ports.CustomerService, logger *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCustomer handles customer creation
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	var req ports.CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	customer, err := h.service.CreateCustomer(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create customer failed", "error", err, "customer_id", req.ID)
		return storeHTTPError(err)
	}

	return c.JSON(http.StatusCreated, CustomerResponse{
		Message: "Customer saved",
		Data:    customer,
	})
}

// GetCustomer handles getting a customer by id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id := c.Param("id")

	customer, err := h.service.GetCustomer(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			h.logger.Error("Get customer failed", "error", err, "customer_id", id)
		}
		return storeHTTPError(err)
	}

	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles listing all customers
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	customers, err := h.service.ListCustomers(c.Request().Context())
	if err != nil {
		h.logger.Error("List customers failed", "error", err)
		return storeHTTPError(err)
	}

	return c.JSON(http.StatusOK, customers)
}

// UpdateCustomer handles partial customer updates. The body is an
// arbitrary JSON object whose fields are merged into the record.
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id := c.Param("id")

	// Decode the body directly rather than through Bind: binding a map
	// also injects path params into it, and the merge field set must
	// come from the body alone. An empty body is an empty merge.
	fields := map[string]any{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	customer, err := h.service.UpdateCustomer(c.Request().Context(), id, fields)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) && !errors.Is(err, entities.ErrInvalidRecord) {
			h.logger.Error("Update customer failed", "error", err, "customer_id", id)
		}
		return storeHTTPError(err)
	}

	return c.JSON(http.StatusOK, CustomerResponse{
		Message: "Customer updated",
		Data:    customer,
	})
}

// DeleteCustomer handles customer deletion
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	id := c.Param("id")

	if err := h.service.DeleteCustomer(c.Request().Context(), id); err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			h.logger.Error("Delete customer failed", "error", err, "customer_id", id)
		}
		return storeHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// storeHTTPError maps store error kinds to transport-level failures.
func storeHTTPError(err error) error {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Customer not found")
	case errors.Is(err, entities.ErrDuplicateID):
		return echo.NewHTTPError(http.StatusConflict, "Customer id already exists")
	case errors.Is(err, entities.ErrInvalidRecord):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		// ErrCorruptStore and I/O failures are server-side problems.
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage failure").SetInternal(err)
	}
}

// Response types

// CustomerResponse is the envelope returned by mutating endpoints.
type CustomerResponse struct {
	Message string          `json:"message"`
	Data    entities.Record `json:"data"`
}

// MessageResponse carries a bare status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries an error with optional details.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
