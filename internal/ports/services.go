package ports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/billentry/customers/internal/domain/entities"
)

// CustomerService interface for customer record operations as consumed
// by the HTTP and CLI adapters.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (entities.Record, error)
	GetCustomer(ctx context.Context, id string) (entities.Record, error)
	ListCustomers(ctx context.Context) ([]entities.Record, error)
	UpdateCustomer(ctx context.Context, id string, fields map[string]any) (entities.Record, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// CreateCustomerRequest carries a new customer record. The named
// fields mirror the usual customer shape; any additional JSON fields
// land in Extra and are stored alongside the named ones.
type CreateCustomerRequest struct {
	ID      string            `json:"id" validate:"required"`
	Name    string            `json:"name" validate:"required"`
	Phone   string            `json:"phone"`
	Address string            `json:"address"`
	Extra   map[string]string `json:"-"`
}

// UnmarshalJSON decodes the request from an arbitrary JSON object,
// coercing scalar values to strings and keeping unknown fields.
// Numbers are decoded as json.Number so large integer values keep
// their exact digits instead of going through float64.
func (r *CreateCustomerRequest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	fields, err := CoerceFields(raw)
	if err != nil {
		return err
	}

	r.ID = fields[entities.FieldID]
	r.Name = fields["name"]
	r.Phone = fields["phone"]
	r.Address = fields["address"]
	delete(fields, entities.FieldID)
	delete(fields, "name")
	delete(fields, "phone")
	delete(fields, "address")
	r.Extra = fields
	return nil
}

// Record converts the request into a storable record.
func (r CreateCustomerRequest) Record() entities.Record {
	rec := make(entities.Record, len(r.Extra)+4)
	for k, v := range r.Extra {
		rec[k] = v
	}
	rec[entities.FieldID] = r.ID
	rec["name"] = r.Name
	rec["phone"] = r.Phone
	rec["address"] = r.Address
	return rec
}

// CoerceFields converts a decoded JSON object into a flat string
// field map. Scalar values are stringified; nested objects and arrays
// are rejected because records are flat by contract.
func CoerceFields(raw map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := coerceString(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = s
	}
	return fields, nil
}

func coerceString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}
