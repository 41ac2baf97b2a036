package practitioner

import (
	"context"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, p *Practitioner) (*Practitioner, error)
	// Buckets groups practitioners into pending and onboarded, then by canonical provider.
	Buckets(ctx context.Context) (*Buckets, error)
	List(ctx context.Context) ([]*Practitioner, error)
	// UpdateOnboarding replaces the whole checklist; unset flags become false.
	UpdateOnboarding(ctx context.Context, id string, o Onboarding) (*Practitioner, error)
	Totals(ctx context.Context) (*Totals, error)
	Count(ctx context.Context) (int, error)
}

// ChangeNotifier is told when practitioner data changes.
type ChangeNotifier interface {
	PractitionersChanged(ctx context.Context)
}

type service struct {
	repo     Repository
	notifier ChangeNotifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier ChangeNotifier, logger *zap.Logger) Service {
	return &service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

func (s *service) Create(ctx context.Context, p *Practitioner) (*Practitioner, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" && p.LastName == "" {
		return nil, apperr.Validation("Practitioner needs a name.")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	p.Provider = provider.Normalize(strings.TrimSpace(p.Provider))
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	p.InterestList = SplitInterests(p.Interests)
	s.changed(ctx)
	return p, nil
}

func (s *service) List(ctx context.Context) ([]*Practitioner, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Provider = provider.OrUnassigned(p.Provider)
		p.InterestList = SplitInterests(p.Interests)
	}
	return list, nil
}

func (s *service) Buckets(ctx context.Context) (*Buckets, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := newGrouper()
	completed := newGrouper()
	for _, p := range list {
		if p.Onboarded {
			completed.add(p)
		} else {
			pending.add(p)
		}
	}
	return &Buckets{Pending: pending.groups(), Completed: completed.groups()}, nil
}

func (s *service) UpdateOnboarding(ctx context.Context, id string, o Onboarding) (*Practitioner, error) {
	if err := s.repo.UpdateOnboarding(ctx, id, o); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Provider = provider.OrUnassigned(p.Provider)
	p.InterestList = SplitInterests(p.Interests)
	s.logger.Info("practitioner flags updated",
		zap.String("practitioner_id", id), zap.Bool("onboarded", o.Onboarded))
	s.changed(ctx)
	return p, nil
}

func (s *service) Totals(ctx context.Context) (*Totals, error) {
	return s.repo.Totals(ctx)
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *service) changed(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.PractitionersChanged(ctx)
	}
}

var interestSeparators = strings.NewReplacer("\r", "\n", "•", "\n", ";", "\n", "|", "\n", ",", "\n")

// SplitInterests turns a free-text interests field into a list. Entries are
// separated by newlines, bullets, semicolons, pipes or commas.
func SplitInterests(v string) []string {
	out := []string{}
	for _, part := range strings.Split(interestSeparators.Replace(v), "\n") {
		if part = strings.Trim(part, " -\t"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinInterests stores a list in the form SplitInterests reads back.
func JoinInterests(list []string) string {
	return strings.Join(list, "\n")
}

type grouper struct {
	byProvider map[string]*ProviderGroup
	keys       []string
}

func newGrouper() *grouper {
	return &grouper{byProvider: make(map[string]*ProviderGroup)}
}

func (g *grouper) add(p *Practitioner) {
	pg, ok := g.byProvider[p.Provider]
	if !ok {
		pg = &ProviderGroup{Provider: p.Provider}
		g.byProvider[p.Provider] = pg
		g.keys = append(g.keys, p.Provider)
	}
	pg.Practitioners = append(pg.Practitioners, p)
}

func (g *grouper) groups() []*ProviderGroup {
	provider.SortGroups(g.keys)
	out := make([]*ProviderGroup, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.byProvider[k])
	}
	return out
}
