package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file filed under a provider.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Provider   string    `json:"provider"`
	Filename   string    `json:"filename"`
	StoredName string    `json:"stored_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ProviderGroup struct {
	Provider  string      `json:"provider"`
	Documents []*Document `json:"documents"`
}
