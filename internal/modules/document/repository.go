package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	// List returns every document, newest upload first.
	List(ctx context.Context) ([]*Document, error)
}
