package practitioner

import "context"

type Repository interface {
	Create(ctx context.Context, p *Practitioner) error
	Get(ctx context.Context, id string) (*Practitioner, error)
	// List returns practitioners by sign-up date, newest first.
	List(ctx context.Context) ([]*Practitioner, error)
	UpdateOnboarding(ctx context.Context, id string, o Onboarding) error
	Count(ctx context.Context) (int, error)
	Totals(ctx context.Context) (*Totals, error)
}
