package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docreader/internal/parser"
	apperr "github.com/xxxsen/docreader/internal/pkg/errors"
)

// ReaderService applies request-independent policy (payload limits) before
// handing work to the parsing facade.
type ReaderService struct {
	parser   *parser.Parser
	maxBytes int64
}

// NewReaderService builds the service. maxBytes caps the decoded payload
// size; zero disables the cap.
func NewReaderService(p *parser.Parser, maxBytes int64) *ReaderService {
	return &ReaderService{parser: p, maxBytes: maxBytes}
}

// ReadFile parses an uploaded document and returns its chunks. Empty
// content is not an error here: text formats flatten to zero chunks, and
// container formats fail in their own parsers with a precise cause.
func (s *ReaderService) ReadFile(ctx context.Context, name string, fileType string, content []byte, cfg parser.ReadConfig) (*parser.Result, error) {
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", apperr.ErrPayloadTooLarge, len(content), s.maxBytes)
	}
	res, err := s.parser.ParseFile(ctx, name, fileType, content, cfg)
	if err != nil {
		logutil.GetLogger(ctx).Error("parse file failed",
			zap.String("name", name), zap.String("file_type", fileType), zap.Error(err))
		return nil, err
	}
	return res, nil
}

// ReadURL fetches a web page and returns its chunks.
func (s *ReaderService) ReadURL(ctx context.Context, pageURL string, title string, cfg parser.ReadConfig) (*parser.Result, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("%w: empty url", apperr.ErrInvalid)
	}
	res, err := s.parser.ParseURL(ctx, pageURL, title, cfg)
	if err != nil {
		logutil.GetLogger(ctx).Error("parse url failed",
			zap.String("url", pageURL), zap.Error(err))
		return nil, err
	}
	return res, nil
}
