package payment

import "context"

// MethodID identifies the Acuotaz payment method in the merchant catalog.
const MethodID = "ACUOTAZ_PM"

// Processor is a payment processor configuration entity.
type Processor struct {
	ID string
}

// Clone copies the processor so instruments never alias catalog entities.
func (p *Processor) Clone() *Processor {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Method is a payment method configuration entity. A method without a
// processor is a configuration error for this flow.
type Method struct {
	ID        string
	processor *Processor
}

func NewMethod(id string, processor *Processor) *Method {
	return &Method{ID: id, processor: processor}
}

// Processor returns the processor bound to the method, or nil.
func (m *Method) Processor() *Processor {
	if m == nil {
		return nil
	}
	return m.processor
}

// Catalog resolves payment method configuration. A missing method is reported
// as (nil, nil); errors are reserved for lookup failures.
type Catalog interface {
	PaymentMethod(ctx context.Context, id string) (*Method, error)
}
