package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billentry/customers/internal/adapters/repository"
	"github.com/billentry/customers/internal/application/services"
	"github.com/billentry/customers/internal/domain/entities"
	"github.com/billentry/customers/internal/infrastructure/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestHandler(t *testing.T) (*echo.Echo, *CustomerHandler) {
	t.Helper()

	store, err := repository.NewFileStore(filepath.Join(t.TempDir(), "customers.json"))
	require.NoError(t, err)

	nop := logger.NewNop()
	service := services.NewCustomerService(store, nop)
	handler := NewCustomerHandler(service, nop)

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e, handler
}

func doRequest(e *echo.Echo, handler echo.HandlerFunc, method, target, body string, params ...string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return rec, handler(c)
}

func TestCreateCustomer(t *testing.T) {
	e, h := newTestHandler(t)

	body := `{"id":"1","name":"Asha","phone":"555-0100","address":"12 Elm St"}`
	rec, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Customer saved", resp.Message)
	assert.Equal(t, "Asha", resp.Data["name"])
	assert.Equal(t, "555-0100", resp.Data["phone"])
}

func TestCreateCustomerKeepsExtraFields(t *testing.T) {
	e, h := newTestHandler(t)

	body := `{"id":"1","name":"Asha","email":"asha@example.com","vip":true}`
	rec, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "asha@example.com", resp.Data["email"])
	assert.Equal(t, "true", resp.Data["vip"])
}

func TestCreateCustomerMissingID(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"name":"Asha"}`)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateCustomerDuplicate(t *testing.T) {
	e, h := newTestHandler(t)

	body := `{"id":"1","name":"Asha"}`
	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.NoError(t, err)

	_, err = doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestUpdateCustomer(t *testing.T) {
	e, h := newTestHandler(t)

	body := `{"id":"1","name":"Asha","phone":"555-0100","address":"12 Elm St"}`
	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.NoError(t, err)

	rec, err := doRequest(e, h.UpdateCustomer, http.MethodPut, "/customers/1", `{"phone":"555-0199"}`, "id", "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Customer updated", resp.Message)
	assert.Equal(t, "555-0199", resp.Data["phone"])
	assert.Equal(t, "Asha", resp.Data["name"])
	assert.Equal(t, "12 Elm St", resp.Data["address"])
}

func TestUpdateCustomerNotFound(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.UpdateCustomer, http.MethodPut, "/customers/99", `{"phone":"x"}`, "id", "99")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetCustomer(t *testing.T) {
	e, h := newTestHandler(t)

	body := `{"id":"1","name":"Asha"}`
	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", body)
	require.NoError(t, err)

	rec, err := doRequest(e, h.GetCustomer, http.MethodGet, "/customers/1", "", "id", "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got entities.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Asha", got["name"])

	_, err = doRequest(e, h.GetCustomer, http.MethodGet, "/customers/99", "", "id", "99")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListCustomers(t *testing.T) {
	e, h := newTestHandler(t)

	rec, err := doRequest(e, h.ListCustomers, http.MethodGet, "/customers", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	_, err = doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"1","name":"Asha"}`)
	require.NoError(t, err)
	_, err = doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"2","name":"Ravi"}`)
	require.NoError(t, err)

	rec, err = doRequest(e, h.ListCustomers, http.MethodGet, "/customers", "")
	require.NoError(t, err)

	var got []entities.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID())
	assert.Equal(t, "2", got[1].ID())
}

func TestDeleteCustomer(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"1","name":"Asha"}`)
	require.NoError(t, err)

	rec, err := doRequest(e, h.DeleteCustomer, http.MethodDelete, "/customers/1", "", "id", "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = doRequest(e, h.DeleteCustomer, http.MethodDelete, "/customers/1", "", "id", "1")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestUpdateCustomerEmptyBody(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"1","name":"Asha","phone":"555-0100"}`)
	require.NoError(t, err)

	// An absent body is an empty merge: 200 with the record unchanged.
	rec, err := doRequest(e, h.UpdateCustomer, http.MethodPut, "/customers/1", "", "id", "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.Data.ID())
	assert.Equal(t, "Asha", resp.Data["name"])
	assert.Equal(t, "555-0100", resp.Data["phone"])
}

func TestUpdateCustomerPreservesLargeIntegers(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"1","name":"Asha"}`)
	require.NoError(t, err)

	// 2^53+1 is not representable as float64; the digits must survive.
	rec, err := doRequest(e, h.UpdateCustomer, http.MethodPut, "/customers/1", `{"account":9007199254740993}`, "id", "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "9007199254740993", resp.Data["account"])
}

func TestUpdateCustomerRejectsNestedFields(t *testing.T) {
	e, h := newTestHandler(t)

	_, err := doRequest(e, h.CreateCustomer, http.MethodPost, "/customers", `{"id":"1","name":"Asha"}`)
	require.NoError(t, err)

	_, err = doRequest(e, h.UpdateCustomer, http.MethodPut, "/customers/1", `{"tags":["a","b"]}`, "id", "1")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
