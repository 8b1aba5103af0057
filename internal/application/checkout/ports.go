package checkout

import (
	"context"

	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
)

type IDGenerator interface {
	NewID() string
}

// PaymentProcessor is the hosted-redirect processor driven by the checkout flow.
type PaymentProcessor interface {
	Handle(ctx context.Context, o *domorder.Order, inst *dompay.Instrument) dompay.HandleResult
	Authorize(ctx context.Context, orderNo string, inst *dompay.Instrument, processor *dompay.Processor) dompay.AuthorizeResult
}

// InstrumentRepository is the part of the instrument store the checkout flow reads and seeds.
type InstrumentRepository interface {
	Insert(ctx context.Context, inst *dompay.Instrument) error
	Get(ctx context.Context, id string) (*dompay.Instrument, error)
}
