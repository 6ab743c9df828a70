package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:4000/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "plants/fern.jpg", strings.NewReader("jpeg"), "image/jpeg"))
	assert.True(t, disk.Exists(ctx, "plants/fern.jpg"))
	assert.Equal(t, "http://localhost:4000/storage/plants/fern.jpg", disk.URL("plants/fern.jpg"))

	data, err := os.ReadFile(filepath.Join(disk.Root(), "plants", "fern.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, disk.Delete(ctx, "plants/fern.jpg"))
	assert.False(t, disk.Exists(ctx, "plants/fern.jpg"))
	assert.NoError(t, disk.Delete(ctx, "plants/fern.jpg"))
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewLocalDisk(filepath.Join(root, "inner"), "")
	require.NoError(t, err)

	require.NoError(t, disk.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), ""))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, disk.Exists(context.Background(), "escape.txt"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := storage.New(storage.Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := storage.New(storage.Config{Driver: "s3"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}
