// Package storage stores uploaded plant images on a local directory or an
// S3-compatible bucket (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.New(storage.FromConfig())
//	err = disk.Put(ctx, "plants/abc.jpg", file, "image/jpeg")
//	url := disk.URL("plants/abc.jpg")
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/plantnet/plantnet/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// Config selects and configures a driver.
type Config struct {
	Driver string // "local" | "s3"

	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

// FromConfig reads the STORAGE_* and S3_* keys.
func FromConfig() Config {
	return Config{
		Driver:     config.StorageDefault(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
}

// New builds the configured disk.
func New(cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return newS3Disk(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
