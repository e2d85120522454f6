package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docreader/internal/parser"
	apperr "github.com/xxxsen/docreader/internal/pkg/errors"
)

func newTestService(t *testing.T, maxBytes int64) *ReaderService {
	t.Helper()
	p, err := parser.New(nil, t.TempDir())
	require.NoError(t, err)
	return NewReaderService(p, maxBytes)
}

func TestReadFileEmptyContentYieldsZeroChunks(t *testing.T) {
	svc := newTestService(t, 0)
	res, err := svc.ReadFile(context.Background(), "empty.txt", "txt", nil, parser.ReadConfig{})
	require.NoError(t, err)
	require.Empty(t, res.Chunks)
}

func TestReadFilePayloadCap(t *testing.T) {
	svc := newTestService(t, 4)
	_, err := svc.ReadFile(context.Background(), "big.txt", "txt", []byte("exceeds"), parser.ReadConfig{})
	require.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
}

func TestReadURLRequiresURL(t *testing.T) {
	svc := newTestService(t, 0)
	_, err := svc.ReadURL(context.Background(), "", "", parser.ReadConfig{})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
