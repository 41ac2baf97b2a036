package practitioner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const practitionerColumns = `id, provider, title, first_name, last_name, email, phone, occupation, city,
	province, postal_code, registered_with_board, interests, notes, signed_up,
	onboarded, training, website, whatsapp, engagebay, created_at`

func (r *postgresRepo) Create(ctx context.Context, p *Practitioner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO practitioners (`+practitionerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		p.ID, nullable(p.Provider), nullable(p.Title), p.FirstName, p.LastName, nullable(p.Email),
		nullable(p.Phone), nullable(p.Occupation), nullable(p.City), nullable(p.Province),
		nullable(p.PostalCode), p.RegisteredWithBoard, nullable(p.Interests), nullable(p.Notes), p.SignedUp,
		p.Onboarded, p.Training, p.Website, p.WhatsApp, p.EngageBay, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert practitioner: %w", err)
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*Practitioner, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Practitioner not found.")
	}
	p, err := scanPractitioner(r.db.QueryRowContext(ctx,
		`SELECT `+practitionerColumns+` FROM practitioners WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Practitioner not found.")
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Practitioner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+practitionerColumns+` FROM practitioners
		ORDER BY signed_up DESC NULLS LAST, last_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateOnboarding(ctx context.Context, id string, o Onboarding) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("Practitioner not found.")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE practitioners SET onboarded=$1, training=$2, website=$3, whatsapp=$4, engagebay=$5
		WHERE id=$6`,
		o.Onboarded, o.Training, o.Website, o.WhatsApp, o.EngageBay, uid)
	if err != nil {
		return fmt.Errorf("update practitioner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Practitioner not found.")
	}
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM practitioners`).Scan(&n)
	return n, err
}

func (r *postgresRepo) Totals(ctx context.Context) (*Totals, error) {
	t := &Totals{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE onboarded) FROM practitioners`).
		Scan(&t.Total, &t.Onboarded)
	if err != nil {
		return nil, fmt.Errorf("practitioner totals: %w", err)
	}
	t.Pending = t.Total - t.Onboarded
	return t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPractitioner(row scanner) (*Practitioner, error) {
	p := &Practitioner{}
	var prov, title, email, phone, occupation, city, province, postal, interests, notes sql.NullString
	err := row.Scan(&p.ID, &prov, &title, &p.FirstName, &p.LastName, &email, &phone, &occupation, &city,
		&province, &postal, &p.RegisteredWithBoard, &interests, &notes, &p.SignedUp,
		&p.Onboarded, &p.Training, &p.Website, &p.WhatsApp, &p.EngageBay, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Provider, p.Title, p.Email, p.Phone = prov.String, title.String, email.String, phone.String
	p.Occupation, p.City, p.Province, p.PostalCode = occupation.String, city.String, province.String, postal.String
	p.Interests, p.Notes = interests.String, notes.String
	return p, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
