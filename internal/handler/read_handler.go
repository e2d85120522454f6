package handler

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docreader/internal/parser"
	"github.com/xxxsen/docreader/internal/pkg/errcode"
	apperr "github.com/xxxsen/docreader/internal/pkg/errors"
	"github.com/xxxsen/docreader/internal/pkg/response"
	"github.com/xxxsen/docreader/internal/service"
	"github.com/xxxsen/docreader/internal/storage"
	"github.com/xxxsen/docreader/internal/vision"
)

type ReadHandler struct {
	svc *service.ReaderService
}

func NewReadHandler(svc *service.ReaderService) *ReadHandler {
	return &ReadHandler{svc: svc}
}

type storageConfigRequest struct {
	Provider        string `json:"provider"`
	Region          string `json:"region"`
	BucketName      string `json:"bucket_name"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	AppID           string `json:"app_id"`
	Endpoint        string `json:"endpoint"`
	PathPrefix      string `json:"path_prefix"`
	UseSSL          bool   `json:"use_ssl"`
}

type vlmConfigRequest struct {
	ModelName     string `json:"model_name"`
	BaseURL       string `json:"base_url"`
	APIKey        string `json:"api_key"`
	InterfaceType string `json:"interface_type"`
	Prompt        string `json:"prompt"`
}

type readConfigRequest struct {
	ChunkSize        int                   `json:"chunk_size"`
	ChunkOverlap     int                   `json:"chunk_overlap"`
	Separators       []string              `json:"separators"`
	EnableMultimodal bool                  `json:"enable_multimodal"`
	MaxChunks        int                   `json:"max_chunks"`
	MaxPages         int                   `json:"max_pages"`
	StorageConfig    *storageConfigRequest `json:"storage_config"`
	VLMConfig        *vlmConfigRequest     `json:"vlm_config"`
}

type readFileRequest struct {
	FileName    string             `json:"file_name"`
	FileType    string             `json:"file_type"`
	FileContent string             `json:"file_content"`
	ReadConfig  *readConfigRequest `json:"read_config"`
}

type readURLRequest struct {
	URL        string             `json:"url"`
	Title      string             `json:"title"`
	ReadConfig *readConfigRequest `json:"read_config"`
}

func (r *storageConfigRequest) toConfig() *storage.Config {
	if r == nil {
		return nil
	}
	provider := strings.ToLower(strings.TrimSpace(r.Provider))
	switch provider {
	case "cos":
		bucket := r.BucketName
		// COS bucket names carry the account app id as a suffix.
		if r.AppID != "" && !strings.HasSuffix(bucket, "-"+r.AppID) {
			bucket += "-" + r.AppID
		}
		return &storage.Config{Type: "cos", Data: map[string]interface{}{
			"secret_id":  r.AccessKeyID,
			"secret_key": r.SecretAccessKey,
			"region":     r.Region,
			"bucket":     bucket,
			"prefix":     r.PathPrefix,
		}}
	case "minio":
		return &storage.Config{Type: "minio", Data: map[string]interface{}{
			"endpoint":   r.Endpoint,
			"access_key": r.AccessKeyID,
			"secret_key": r.SecretAccessKey,
			"region":     r.Region,
			"bucket":     r.BucketName,
			"prefix":     r.PathPrefix,
			"use_ssl":    r.UseSSL,
		}}
	default:
		return &storage.Config{Type: provider, Data: map[string]interface{}{
			"dir":        r.PathPrefix,
			"public_url": r.Endpoint,
		}}
	}
}

func (r *vlmConfigRequest) toConfig() *vision.Config {
	if r == nil || r.ModelName == "" {
		return nil
	}
	provider := r.InterfaceType
	if provider == "" {
		provider = "openai"
	}
	return &vision.Config{
		Provider: provider,
		Model:    r.ModelName,
		APIKey:   r.APIKey,
		BaseURL:  r.BaseURL,
		Prompt:   r.Prompt,
	}
}

func (r *readConfigRequest) toConfig() parser.ReadConfig {
	if r == nil {
		return parser.ReadConfig{}
	}
	return parser.ReadConfig{
		ChunkSize:        r.ChunkSize,
		ChunkOverlap:     r.ChunkOverlap,
		Separators:       r.Separators,
		EnableMultimodal: r.EnableMultimodal,
		MaxChunks:        r.MaxChunks,
		MaxPages:         r.MaxPages,
		StorageConfig:    r.StorageConfig.toConfig(),
		VisionConfig:     r.VLMConfig.toConfig(),
	}
}

func (h *ReadHandler) ReadFile(c *gin.Context) {
	var req readFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.FileName == "" && req.FileType == "" {
		response.Error(c, errcode.ErrInvalid, "file_name or file_type is required")
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "file_content is not valid base64")
		return
	}
	res, err := h.svc.ReadFile(c.Request.Context(), req.FileName, req.FileType, content, req.ReadConfig.toConfig())
	if err != nil {
		failRead(c, err)
		return
	}
	response.Success(c, res)
}

func (h *ReadHandler) ReadURL(c *gin.Context) {
	var req readURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.URL == "" {
		response.Error(c, errcode.ErrInvalid, "url is required")
		return
	}
	res, err := h.svc.ReadURL(c.Request.Context(), req.URL, req.Title, req.ReadConfig.toConfig())
	if err != nil {
		failRead(c, err)
		return
	}
	response.Success(c, res)
}

// failRead maps service errors onto wire codes; the message always carries
// the cause so a failed ingestion is never mistaken for an empty document.
func failRead(c *gin.Context, err error) {
	code := errcode.ErrParseFailed
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		code = errcode.ErrInvalid
	case errors.Is(err, apperr.ErrUnsupportedFormat):
		code = errcode.ErrUnsupportedFormat
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		code = errcode.ErrPayloadTooLarge
	case errors.Is(err, apperr.ErrStorageFailed):
		code = errcode.ErrStorageFailed
	}
	response.Error(c, code, err.Error())
}
