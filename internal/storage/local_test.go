package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolforyou/poolforyou-api/internal/storage"
)

func TestLocalSave(t *testing.T) {
	root := filepath.Join(t.TempDir(), "var", "data", "photos")
	l := storage.NewLocal(root)

	p, err := l.Save(context.Background(), "work_reports/3", "a1.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/work_reports/3/a1.jpg", p, "path is relative to the static mount, not the disk root")

	b, err := os.ReadFile(filepath.Join(root, "work_reports", "3", "a1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
}

func TestLocalSaveNeverOverwrites(t *testing.T) {
	l := storage.NewLocal(t.TempDir())
	ctx := context.Background()

	_, err := l.Save(ctx, "work_reports/1", "same.png", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = l.Save(ctx, "work_reports/1", "same.png", strings.NewReader("second"))
	assert.Error(t, err)

	b, err := os.ReadFile(filepath.Join(l.Root, "work_reports", "1", "same.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
}

func TestLocalSaveRejectsTraversal(t *testing.T) {
	l := storage.NewLocal(t.TempDir())
	ctx := context.Background()

	for _, tc := range []struct{ ns, name string }{
		{"work_reports/1", "../../escape.jpg"},
		{"work_reports/../..", "x.jpg"},
		{"work_reports/1", ""},
		{"", "x.jpg"},
	} {
		_, err := l.Save(ctx, tc.ns, tc.name, strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidName, "%s/%s", tc.ns, tc.name)
	}
}

func TestLocalSaveCancelled(t *testing.T) {
	l := storage.NewLocal(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Save(ctx, "work_reports/2", "c.jpg", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(filepath.Join(l.Root, "work_reports", "2", "c.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
