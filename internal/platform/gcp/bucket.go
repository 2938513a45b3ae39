package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// ErrObjectNotFound is returned by Open for missing keys.
var ErrObjectNotFound = errors.New("artifact not found")

// DeckBucket stores rendered decks in one GCS bucket under a key prefix.
type DeckBucket interface {
	// Upload copies the local file at localPath and returns its object key.
	Upload(ctx context.Context, taskID, localPath string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type BucketOptions struct {
	Bucket          string
	Prefix          string
	Storage         ObjectStorageConfig
	CredentialsJSON string
	CredentialsFile string
}

type deckBucket struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewDeckBucket(ctx context.Context, log *logger.Logger, opts BucketOptions) (DeckBucket, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("missing deck bucket name")
	}
	if err := ValidateObjectStorageConfig(opts.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "DeckBucket")
	serviceLog.Info("Object storage initialized",
		"mode", opts.Storage.Mode,
		"mode_source", opts.Storage.ModeSource(),
		"emulator_host", opts.Storage.EmulatorHost,
		"bucket", opts.Bucket,
	)
	return &deckBucket{
		log:    serviceLog,
		client: client,
		bucket: strings.TrimSpace(opts.Bucket),
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
	}, nil
}

func newStorageClientForMode(ctx context.Context, opts BucketOptions) (*storage.Client, error) {
	switch opts.Storage.Mode {
	case ObjectStorageModeGCS:
		clientOpts := ClientOptions(opts.CredentialsJSON, opts.CredentialsFile)
		clientOpts = append(clientOpts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, clientOpts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", opts.Storage.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(opts.Storage.Mode)}
	}
}

// ObjectKey is "<prefix>/<taskID>.pptx".
func ObjectKey(prefix, taskID string) string {
	name := taskID + ".pptx"
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func (b *deckBucket) Upload(ctx context.Context, taskID, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := ObjectKey(b.prefix, taskID)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = pptxContentType
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	b.log.Debug("Deck uploaded", "key", key)
	return key, nil
}

func (b *deckBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %s: %w", key, err)
	}
	return r, nil
}

func (b *deckBucket) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", key, err)
	}
	return nil
}

func (b *deckBucket) Close() error { return b.client.Close() }
