package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/platform/gcp"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode, Mode: "bad-mode"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.err)

			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
		})
	}
}

func stubDeckBucket(t *testing.T) *gcp.BucketOptions {
	t.Helper()
	orig := newDeckBucket
	t.Cleanup(func() { newDeckBucket = orig })

	captured := &gcp.BucketOptions{}
	newDeckBucket = func(_ context.Context, _ *logger.Logger, opts gcp.BucketOptions) (gcp.DeckBucket, error) {
		*captured = opts
		return testDeckBucket{}, nil
	}
	return captured
}

func TestResolveDeckBucketDisabled(t *testing.T) {
	got, err := resolveDeckBucket(context.Background(), logger.Nop(), config.StorageConfig{Artifacts: config.ArtifactsNone})
	if err != nil || got != nil {
		t.Fatalf("expected no bucket, got=%v err=%v", got, err)
	}
}

func TestResolveDeckBucketGCSMode(t *testing.T) {
	captured := stubDeckBucket(t)

	got, err := resolveDeckBucket(context.Background(), logger.Nop(), config.StorageConfig{
		Artifacts:         config.ArtifactsGCS,
		GCSBucket:         "decks-bucket",
		ArtifactPrefix:    "decks",
		ObjectStorageMode: string(gcp.ObjectStorageModeGCS),
	})
	if err != nil {
		t.Fatalf("resolveDeckBucket: %v", err)
	}
	if got == nil {
		t.Fatalf("bucket: expected stub bucket instance")
	}
	if captured.Storage.Mode != gcp.ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", gcp.ObjectStorageModeGCS, captured.Storage.Mode)
	}
	if captured.Bucket != "decks-bucket" || captured.Prefix != "decks" {
		t.Fatalf("unexpected bucket options: %+v", captured)
	}
}

func TestResolveDeckBucketInfersEmulator(t *testing.T) {
	captured := stubDeckBucket(t)

	_, err := resolveDeckBucket(context.Background(), logger.Nop(), config.StorageConfig{
		Artifacts:    config.ArtifactsGCS,
		GCSBucket:    "decks-bucket",
		EmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil {
		t.Fatalf("resolveDeckBucket: %v", err)
	}
	if captured.Storage.Mode != gcp.ObjectStorageModeGCSEmulator || !captured.Storage.Inferred {
		t.Fatalf("expected inferred emulator mode, got=%+v", captured.Storage)
	}
}

func TestResolveDeckBucketConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StorageConfig
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", config.StorageConfig{ObjectStorageMode: "s3"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing emulator host", config.StorageConfig{ObjectStorageMode: string(gcp.ObjectStorageModeGCSEmulator)}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", config.StorageConfig{ObjectStorageMode: string(gcp.ObjectStorageModeGCSEmulator), EmulatorHost: "not-a-url"}, StorageProviderBootstrapErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubDeckBucket(t)
			tc.cfg.Artifacts = config.ArtifactsGCS
			tc.cfg.GCSBucket = "decks-bucket"

			_, err := resolveDeckBucket(context.Background(), logger.Nop(), tc.cfg)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
		})
	}
}

type testDeckBucket struct{}

func (testDeckBucket) Upload(ctx context.Context, taskID, localPath string) (string, error) {
	return "decks/" + taskID + ".pptx", nil
}

func (testDeckBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (testDeckBucket) Delete(ctx context.Context, key string) error { return nil }
func (testDeckBucket) Close() error                                 { return nil }
