package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedExt = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true, "csv": true,
	"png": true, "jpg": true, "jpeg": true, "txt": true, "ppt": true, "pptx": true,
}

type Service interface {
	// Upload stores r under the provider's directory and records it.
	Upload(ctx context.Context, providerName, filename string, r io.Reader) (*Document, error)

	// ByProvider groups documents under every known provider, plus any other
	// provider that has documents.
	ByProvider(ctx context.Context) ([]*ProviderGroup, error)

	// Open finds storedName under the provider's current or legacy directories.
	Open(ctx context.Context, providerName, storedName string) (io.ReadCloser, error)
}

type service struct {
	repo   Repository
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, store Store, logger *zap.Logger) Service {
	return &service{repo: repo, store: store, logger: logger, now: time.Now}
}

func (s *service) Upload(ctx context.Context, providerName, filename string, r io.Reader) (*Document, error) {
	if strings.TrimSpace(filename) == "" || r == nil {
		return nil, apperr.Validation("Choose a file.")
	}
	if !allowedExt[extension(filename)] {
		return nil, apperr.Validation("File type not allowed.")
	}

	prov := provider.OrUnassigned(providerName)
	if !safeDir(provider.DirName(prov)) {
		return nil, apperr.Validation("Unknown provider.")
	}
	id := uuid.New()
	d := &Document{
		ID:         id,
		Provider:   prov,
		Filename:   filename,
		StoredName: SecureFilename(strings.ReplaceAll(id.String(), "-", "") + "_" + filename),
		UploadedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, provider.DirName(prov), d.StoredName, r); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("document uploaded",
		zap.String("provider", prov), zap.String("stored_name", d.StoredName))
	return d, nil
}

func (s *service) ByProvider(ctx context.Context) ([]*ProviderGroup, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byProvider := make(map[string]*ProviderGroup)
	var groups []*ProviderGroup
	for _, p := range provider.Known() {
		g := &ProviderGroup{Provider: p, Documents: []*Document{}}
		byProvider[p] = g
		groups = append(groups, g)
	}
	var extra []string
	for _, d := range docs {
		d.Provider = provider.OrUnassigned(d.Provider)
		g, ok := byProvider[d.Provider]
		if !ok {
			g = &ProviderGroup{Provider: d.Provider}
			byProvider[d.Provider] = g
			extra = append(extra, d.Provider)
		}
		g.Documents = append(g.Documents, d)
	}
	provider.SortGroups(extra)
	for _, p := range extra {
		groups = append(groups, byProvider[p])
	}
	return groups, nil
}

func (s *service) Open(ctx context.Context, providerName, storedName string) (io.ReadCloser, error) {
	if storedName == "" || storedName != SecureFilename(storedName) {
		return nil, apperr.NotFound("File not found.")
	}
	for _, dir := range provider.StorageDirs(providerName) {
		if !safeDir(dir) {
			continue
		}
		rc, err := s.store.Open(ctx, dir, storedName)
		if errors.Is(err, ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, apperr.NotFound("File not found.")
}

// safeDir reports whether dir is a single relative path segment.
func safeDir(dir string) bool {
	return dir != "" && dir != "." && dir != ".." &&
		!strings.ContainsAny(dir, `/\`) && !filepath.IsAbs(dir) && filepath.VolumeName(dir) == ""
}

func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat ASCII file name safe to store on
// disk: path separators and whitespace become underscores, other unsafe
// characters are dropped, and leading dots or underscores are trimmed.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
