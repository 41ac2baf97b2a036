package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// ErrNotExist is returned by a Store when the object is missing.
var ErrNotExist = errors.New("object does not exist")

// ErrOutsideRoot is returned by LocalStore for paths that leave its root.
var ErrOutsideRoot = errors.New("path escapes upload root")

// Store keeps file contents under a provider directory.
type Store interface {
	Save(ctx context.Context, dir, name string, r io.Reader) error
	Open(ctx context.Context, dir, name string) (io.ReadCloser, error)
}

// LocalStore writes files below Root on the local filesystem.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &LocalStore{Root: root}, nil
}

// resolve joins dir and name below Root and refuses anything that lands outside it.
func (s *LocalStore) resolve(dir, name string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, dir, name)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

func (s *LocalStore) Save(_ context.Context, dir, name string, r io.Reader) error {
	full, err := s.resolve(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *LocalStore) Open(_ context.Context, dir, name string) (io.ReadCloser, error) {
	full, err := s.resolve(dir, name)
	if err != nil {
		return nil, ErrNotExist
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

// GCSStore keeps files as objects named "<dir>/<name>" in one bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, dir, name string, r io.Reader) error {
	wc := s.client.Bucket(s.bucket).Object(path.Join(dir, name)).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload file to Google Cloud Storage: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, dir, name string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(path.Join(dir, name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotExist
	}
	return rc, err
}

func (s *GCSStore) Close() error { return s.client.Close() }
