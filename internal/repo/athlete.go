// Package repo contains all database access logic for the club ledger.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here; only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/club-ledger/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AthleteRepo defines the persistence operations for Athletes.
// The service layer depends on this interface, not the Postgres implementation.
type AthleteRepo interface {
	// Create inserts a new athlete and returns the persisted record with the
	// DB-generated id, created_at, and updated_at populated.
	Create(ctx context.Context, a domain.Athlete) (domain.Athlete, error)

	// GetByID retrieves a single athlete by its UUID primary key.
	// Returns domain.ErrNotFound if no athlete with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error)

	// List returns all athletes in insertion order.
	List(ctx context.Context) ([]domain.Athlete, error)

	// Search returns athletes whose first or last name contains term,
	// ignoring case, in insertion order.
	Search(ctx context.Context, term string) ([]domain.Athlete, error)

	// Update overwrites every mutable field of an existing athlete and returns
	// the updated record. Returns domain.ErrNotFound if the ID does not exist.
	Update(ctx context.Context, a domain.Athlete) (domain.Athlete, error)

	// Delete removes an athlete by ID together with its payments.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgAthleteRepo is the Postgres implementation of AthleteRepo.
type pgAthleteRepo struct {
	db db
}

// NewAthleteRepo constructs an AthleteRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewAthleteRepo(db db) AthleteRepo {
	return &pgAthleteRepo{db: db}
}

const athleteColumns = `
	id, first_name, last_name, tax_code, birth_date, address, phone, email,
	enrolled_on, certificate_expires_on, membership_expires_on, notes,
	active, deactivated_on, created_at, updated_at`

// Create inserts a new athlete row and returns the full persisted record.
func (r *pgAthleteRepo) Create(ctx context.Context, a domain.Athlete) (domain.Athlete, error) {
	const q = `
		INSERT INTO athletes (
			first_name, last_name, tax_code, birth_date, address, phone, email,
			enrolled_on, certificate_expires_on, membership_expires_on, notes,
			active, deactivated_on)
		VALUES (
			@first_name, @last_name, @tax_code, @birth_date, @address, @phone, @email,
			@enrolled_on, @certificate_expires_on, @membership_expires_on, @notes,
			@active, @deactivated_on)
		RETURNING` + athleteColumns

	row := r.db.QueryRow(ctx, q, athleteArgs(a))
	result, err := scanAthlete(row)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("repo.AthleteRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an athlete by primary key.
func (r *pgAthleteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	const q = `SELECT` + athleteColumns + ` FROM athletes WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanAthlete(row)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("repo.AthleteRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns every athlete, oldest first.
func (r *pgAthleteRepo) List(ctx context.Context) ([]domain.Athlete, error) {
	const q = `SELECT` + athleteColumns + ` FROM athletes ORDER BY created_at, id`

	athletes, err := r.query(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.AthleteRepo.List: %w", err)
	}
	return athletes, nil
}

// Search matches term as a literal substring: LIKE wildcards typed by the
// user are escaped.
func (r *pgAthleteRepo) Search(ctx context.Context, term string) ([]domain.Athlete, error) {
	const q = `SELECT` + athleteColumns + `
		FROM athletes
		WHERE first_name ILIKE '%' || @term || '%'
		   OR last_name  ILIKE '%' || @term || '%'
		ORDER BY created_at, id`

	athletes, err := r.query(ctx, q, pgx.NamedArgs{"term": likeEscaper.Replace(term)})
	if err != nil {
		return nil, fmt.Errorf("repo.AthleteRepo.Search: %w", err)
	}
	return athletes, nil
}

// Update overwrites the mutable fields of an athlete and returns the updated record.
func (r *pgAthleteRepo) Update(ctx context.Context, a domain.Athlete) (domain.Athlete, error) {
	const q = `
		UPDATE athletes
		SET first_name             = @first_name,
		    last_name              = @last_name,
		    tax_code               = @tax_code,
		    birth_date             = @birth_date,
		    address                = @address,
		    phone                  = @phone,
		    email                  = @email,
		    enrolled_on            = @enrolled_on,
		    certificate_expires_on = @certificate_expires_on,
		    membership_expires_on  = @membership_expires_on,
		    notes                  = @notes,
		    active                 = @active,
		    deactivated_on         = @deactivated_on,
		    updated_at             = now()
		WHERE id = @id
		RETURNING` + athleteColumns

	args := athleteArgs(a)
	args["id"] = a.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanAthlete(row)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("repo.AthleteRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes an athlete by primary key. Payments go with it through
// ON DELETE CASCADE on payments.athlete_id.
func (r *pgAthleteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM athletes WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.AthleteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.AthleteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgAthleteRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Athlete, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	athletes := []domain.Athlete{}
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		athletes = append(athletes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return athletes, nil
}

// likeEscaper neutralizes LIKE metacharacters; backslash is the default
// escape character in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func athleteArgs(a domain.Athlete) pgx.NamedArgs {
	return pgx.NamedArgs{
		"first_name":             a.FirstName,
		"last_name":              a.LastName,
		"tax_code":               a.TaxCode,
		"birth_date":             a.BirthDate, // nil becomes NULL
		"address":                a.Address,
		"phone":                  a.Phone,
		"email":                  a.Email,
		"enrolled_on":            a.EnrolledOn,
		"certificate_expires_on": a.CertificateExpiresOn,
		"membership_expires_on":  a.MembershipExpiresOn,
		"notes":                  a.Notes,
		"active":                 a.Active,
		"deactivated_on":         a.DeactivatedOn,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanAthlete maps a single database row into a domain.Athlete.
func scanAthlete(s scanner) (domain.Athlete, error) {
	var (
		a                             domain.Athlete
		id                            pgtype.UUID
		birth, enrolled, cert, member pgtype.Date
		deactivated                   pgtype.Date
	)

	err := s.Scan(
		&id, &a.FirstName, &a.LastName, &a.TaxCode, &birth, &a.Address, &a.Phone, &a.Email,
		&enrolled, &cert, &member, &a.Notes,
		&a.Active, &deactivated, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Athlete{}, domain.ErrNotFound
		}
		return domain.Athlete{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.EnrolledOn = enrolled.Time
	a.BirthDate = datePtr(birth)
	a.CertificateExpiresOn = datePtr(cert)
	a.MembershipExpiresOn = datePtr(member)
	a.DeactivatedOn = datePtr(deactivated)
	return a, nil
}

// datePtr converts a nullable DATE column into a *time.Time.
func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
