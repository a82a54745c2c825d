package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/internal/domain"
)

// PaymentRepo defines the persistence operations for Payments.
// List queries return rows in insertion order unless noted otherwise.
type PaymentRepo interface {
	// Create inserts a new payment and returns the persisted record.
	Create(ctx context.Context, p domain.Payment) (domain.Payment, error)

	// GetByID retrieves a single payment by its UUID primary key.
	// Returns domain.ErrNotFound if no payment with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)

	// List returns every payment.
	List(ctx context.Context) ([]domain.Payment, error)

	// ListByAthlete returns the payments owned by an athlete.
	ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error)

	// ListByType returns the payments classified as t.
	ListByType(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error)

	// ListByDateRange returns payments whose paid_on falls in r, bounds included.
	ListByDateRange(ctx context.Context, r domain.DateRange) ([]domain.Payment, error)

	// ListByAthleteAndDateRange combines ListByAthlete and ListByDateRange.
	ListByAthleteAndDateRange(ctx context.Context, athleteID uuid.UUID, r domain.DateRange) ([]domain.Payment, error)

	// ListAfter returns payments whose paid_on is strictly after day.
	ListAfter(ctx context.Context, day time.Time) ([]domain.Payment, error)

	// Update overwrites amount, paid_on, and payment_type of an existing payment.
	// Returns domain.ErrNotFound if no payment with that ID exists.
	Update(ctx context.Context, p domain.Payment) (domain.Payment, error)

	// Delete removes a payment by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumByAthlete returns the total amount paid by an athlete; zero when it has no payments.
	SumByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error)

	// SumByAthleteAndType is SumByAthlete restricted to payments of type t.
	SumByAthleteAndType(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error)
}

// pgPaymentRepo is the Postgres implementation of PaymentRepo.
type pgPaymentRepo struct {
	db db
}

// NewPaymentRepo constructs a PaymentRepo backed by the provided db connection.
func NewPaymentRepo(db db) PaymentRepo {
	return &pgPaymentRepo{db: db}
}

// foreignKeyViolation is the SQLSTATE Postgres raises for a dangling athlete_id.
const foreignKeyViolation = "23503"

const paymentColumns = `
	id, athlete_id, amount, paid_on, payment_type, created_at, updated_at`

func (r *pgPaymentRepo) Create(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	const q = `
		INSERT INTO payments (athlete_id, amount, paid_on, payment_type)
		VALUES (@athlete_id, @amount, @paid_on, @payment_type)
		RETURNING` + paymentColumns

	args := pgx.NamedArgs{
		"athlete_id":   p.AthleteID, // invalid NullUUID becomes NULL
		"amount":       p.Amount,
		"paid_on":      p.PaidOn,
		"payment_type": paymentTypeArg(p.Type),
	}

	result, err := scanPayment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		// The athlete can be deleted between the service lookup and the insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.Create: athlete %s: %w", p.AthleteID.UUID, domain.ErrNotFound)
		}
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	const q = `SELECT` + paymentColumns + ` FROM payments WHERE id = @id`

	result, err := scanPayment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepo) List(ctx context.Context) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + ` FROM payments ORDER BY created_at, id`

	payments, err := r.query(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.List: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + `
		FROM payments
		WHERE athlete_id = @athlete_id
		ORDER BY created_at, id`

	payments, err := r.query(ctx, q, pgx.NamedArgs{"athlete_id": athleteID})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.ListByAthlete: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) ListByType(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + `
		FROM payments
		WHERE payment_type = @payment_type
		ORDER BY created_at, id`

	payments, err := r.query(ctx, q, pgx.NamedArgs{"payment_type": string(t)})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.ListByType: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) ListByDateRange(ctx context.Context, dr domain.DateRange) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + `
		FROM payments
		WHERE paid_on BETWEEN @from AND @to
		ORDER BY created_at, id`

	payments, err := r.query(ctx, q, pgx.NamedArgs{"from": dr.From, "to": dr.To})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.ListByDateRange: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) ListByAthleteAndDateRange(ctx context.Context, athleteID uuid.UUID, dr domain.DateRange) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + `
		FROM payments
		WHERE athlete_id = @athlete_id
		  AND paid_on BETWEEN @from AND @to
		ORDER BY created_at, id`

	args := pgx.NamedArgs{"athlete_id": athleteID, "from": dr.From, "to": dr.To}
	payments, err := r.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.ListByAthleteAndDateRange: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) ListAfter(ctx context.Context, day time.Time) ([]domain.Payment, error) {
	const q = `SELECT` + paymentColumns + `
		FROM payments
		WHERE paid_on > @day
		ORDER BY created_at, id`

	payments, err := r.query(ctx, q, pgx.NamedArgs{"day": day})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.ListAfter: %w", err)
	}
	return payments, nil
}

func (r *pgPaymentRepo) Update(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	const q = `
		UPDATE payments
		SET amount       = @amount,
		    paid_on      = @paid_on,
		    payment_type = @payment_type,
		    updated_at   = now()
		WHERE id = @id
		RETURNING` + paymentColumns

	args := pgx.NamedArgs{
		"id":           p.ID,
		"amount":       p.Amount,
		"paid_on":      p.PaidOn,
		"payment_type": paymentTypeArg(p.Type),
	}

	result, err := scanPayment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM payments WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PaymentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PaymentRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// SumByAthlete relies on COALESCE so that an athlete without payments
// yields 0 rather than NULL.
func (r *pgPaymentRepo) SumByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE athlete_id = @athlete_id`

	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"athlete_id": athleteID}).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("repo.PaymentRepo.SumByAthlete: %w", err)
	}
	return total, nil
}

func (r *pgPaymentRepo) SumByAthleteAndType(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE athlete_id = @athlete_id
		  AND payment_type = @payment_type`

	args := pgx.NamedArgs{"athlete_id": athleteID, "payment_type": string(t)}
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, q, args).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("repo.PaymentRepo.SumByAthleteAndType: %w", err)
	}
	return total, nil
}

func (r *pgPaymentRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return payments, nil
}

// paymentTypeArg stores the unclassified type as NULL.
func paymentTypeArg(t domain.PaymentType) any {
	if t == "" {
		return nil
	}
	return string(t)
}

// scanPayment maps a single database row into a domain.Payment.
// A payment_type value outside the known set scans as unclassified.
func scanPayment(s scanner) (domain.Payment, error) {
	var (
		p         domain.Payment
		id        pgtype.UUID
		athleteID pgtype.UUID
		paidOn    pgtype.Date
		typ       pgtype.Text
	)

	err := s.Scan(&id, &athleteID, &p.Amount, &paidOn, &typ, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	if athleteID.Valid {
		p.AthleteID = uuid.NullUUID{UUID: uuid.UUID(athleteID.Bytes), Valid: true}
	}
	p.PaidOn = paidOn.Time
	if typ.Valid {
		p.Type, _ = domain.ParsePaymentType(typ.String)
	}
	return p, nil
}
