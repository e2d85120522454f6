package parser

import (
	"github.com/xxxsen/docreader/internal/storage"
	"github.com/xxxsen/docreader/internal/vision"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 50
	defaultMaxChunks    = 1000
)

var defaultSeparators = []string{"\n\n", "\n", "。"}

// ReadConfig carries the per-request knobs of one ingestion.
type ReadConfig struct {
	ChunkSize        int             `json:"chunk_size"`
	ChunkOverlap     int             `json:"chunk_overlap"`
	Separators       []string        `json:"separators"`
	EnableMultimodal bool            `json:"enable_multimodal"`
	MaxChunks        int             `json:"max_chunks"`
	MaxPages         int             `json:"max_pages"`
	StorageConfig    *storage.Config `json:"storage_config"`
	VisionConfig     *vision.Config  `json:"vision_config"`
}

func (c *ReadConfig) fillDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = defaultChunkOverlap
		if c.ChunkOverlap >= c.ChunkSize {
			c.ChunkOverlap = c.ChunkSize / 10
		}
	}
	if len(c.Separators) == 0 {
		c.Separators = defaultSeparators
	}
	if c.MaxChunks <= 0 {
		c.MaxChunks = defaultMaxChunks
	}
}

// ImageRecord describes one image referenced inside a chunk. Start/End are
// byte offsets of the markdown reference within the chunk content.
type ImageRecord struct {
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	OCRText     string `json:"ocr_text,omitempty"`
	OriginalURL string `json:"original_url,omitempty"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// Chunk is one slice of the flattened document, plus any images whose
// references fall inside it.
type Chunk struct {
	Content string        `json:"content"`
	Seq     int           `json:"seq"`
	Start   int           `json:"start"`
	End     int           `json:"end"`
	Images  []ImageRecord `json:"images,omitempty"`
}

// Result is a parsed document ready for the service boundary.
type Result struct {
	Chunks []Chunk `json:"chunks"`
}
