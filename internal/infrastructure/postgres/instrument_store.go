// Package postgres stores payment instruments in PostgreSQL through
// database/sql and the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const schema = `
create schema if not exists acuotaz;
create table if not exists acuotaz.payment_instruments (
    instrument_id  text primary key,
    order_no       text not null,
    method_id      text not null,
    amount         numeric(18, 2) not null,
    transaction_id text,
    processor_id   text,
    updated_at     timestamptz not null default now()
);
create index if not exists payment_instruments_order_no_idx on acuotaz.payment_instruments(order_no);
`

// statementTimeout bounds every statement inside a store transaction.
const statementTimeout = "3s"

type InstrumentStore struct {
	db *sql.DB
}

// Open connects with the postgres driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

func NewInstrumentStore(db *sql.DB) *InstrumentStore {
	return &InstrumentStore{db: db}
}

// Migrate creates the schema when missing.
func (s *InstrumentStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *InstrumentStore) Insert(ctx context.Context, inst *domain.Instrument) error {
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("instrument store: id is required")
	}
	_, err := s.db.ExecContext(ctx, `
        insert into acuotaz.payment_instruments(instrument_id, order_no, method_id, amount, transaction_id, processor_id)
        values ($1, $2, $3, $4, $5, $6)
    `, inst.ID, inst.OrderNo, inst.MethodID, inst.Transaction.Amount,
		nullString(inst.Transaction.TransactionID), nullString(inst.Transaction.ProcessorID()))
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (s *InstrumentStore) Get(ctx context.Context, id string) (*domain.Instrument, error) {
	row := s.db.QueryRowContext(ctx, `
        select instrument_id, order_no, method_id, amount, transaction_id, processor_id
          from acuotaz.payment_instruments
         where instrument_id = $1
    `, id)

	var (
		inst         domain.Instrument
		amount       decimal.Decimal
		txID, procID sql.NullString
	)
	if err := row.Scan(&inst.ID, &inst.OrderNo, &inst.MethodID, &amount, &txID, &procID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	inst.Transaction.Amount = amount
	inst.Transaction.TransactionID = txID.String
	if procID.Valid {
		inst.Transaction.Processor = &domain.Processor{ID: procID.String}
	}
	return &inst, nil
}

// Begin opens a database transaction with a local statement timeout.
func (s *InstrumentStore) Begin(ctx context.Context) (domain.InstrumentTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `set local statement_timeout = '`+statementTimeout+`'`); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &instrumentTx{tx: tx}, nil
}

type instrumentTx struct {
	tx *sql.Tx
}

// lock takes the row lock so concurrent submissions for one instrument serialize.
func (t *instrumentTx) lock(ctx context.Context, instrumentID string) error {
	var id string
	err := t.tx.QueryRowContext(ctx, `
        select instrument_id from acuotaz.payment_instruments
         where instrument_id = $1
           for update
    `, instrumentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("instrument %s: %w", instrumentID, domain.ErrNotFound)
	}
	return err
}

func (t *instrumentTx) UpdateTransaction(ctx context.Context, instrumentID, transactionID string, processor *domain.Processor) error {
	if err := t.lock(ctx, instrumentID); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
        update acuotaz.payment_instruments
           set transaction_id = $2,
               processor_id   = $3,
               updated_at     = now()
         where instrument_id = $1
    `, instrumentID, nullString(transactionID), nullString(processorID(processor)))
	return affectedOne(res, err, instrumentID)
}

func (t *instrumentTx) BindProcessor(ctx context.Context, instrumentID string, processor *domain.Processor) error {
	if err := t.lock(ctx, instrumentID); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
        update acuotaz.payment_instruments
           set processor_id = $2,
               updated_at   = now()
         where instrument_id = $1
    `, instrumentID, nullString(processorID(processor)))
	return affectedOne(res, err, instrumentID)
}

func (t *instrumentTx) Commit() error {
	return txDone(t.tx.Commit())
}

func (t *instrumentTx) Rollback() error {
	return txDone(t.tx.Rollback())
}

func affectedOne(res sql.Result, err error, id string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("instrument %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func txDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return domain.ErrTxDone
	}
	return err
}

func processorID(p *domain.Processor) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
