package payment

import "time"

// PendingEvent is emitted after Handle stamped an instrument with a
// transaction id and bound it to a processor.
type PendingEvent struct {
	OrderNo       string
	InstrumentID  string
	TransactionID string
	ProcessorID   string
	OccurredAt    time.Time
}

func (PendingEvent) EventName() string { return "payment.pending" }

func (e PendingEvent) AggregateID() string { return e.OrderNo }

func NewPendingEvent(orderNo string, inst *Instrument) PendingEvent {
	return PendingEvent{
		OrderNo:       orderNo,
		InstrumentID:  inst.ID,
		TransactionID: inst.Transaction.TransactionID,
		ProcessorID:   inst.Transaction.ProcessorID(),
		OccurredAt:    time.Now().UTC(),
	}
}

// RedirectPreparedEvent is emitted after Authorize built the gateway redirect.
type RedirectPreparedEvent struct {
	OrderNo       string
	InstrumentID  string
	TransactionID string
	RedirectURL   string
	OccurredAt    time.Time
}

func (RedirectPreparedEvent) EventName() string { return "payment.redirect_prepared" }

func (e RedirectPreparedEvent) AggregateID() string { return e.OrderNo }

func NewRedirectPreparedEvent(orderNo string, inst *Instrument, redirectURL string) RedirectPreparedEvent {
	return RedirectPreparedEvent{
		OrderNo:       orderNo,
		InstrumentID:  inst.ID,
		TransactionID: inst.Transaction.TransactionID,
		RedirectURL:   redirectURL,
		OccurredAt:    time.Now().UTC(),
	}
}
