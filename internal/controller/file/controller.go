// Package file provides HTTP handlers for file-related operations.
package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/upload"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

// FileController handles file related endpoints
type FileController struct {
	Uploads upload.ResumeStore
	Log     *zap.Logger
}

// FilePathResponse is returned after a successful upload.
type FilePathResponse struct {
	FilePath string `json:"filePath"`
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NewFileController creates a new instance of FileController
func NewFileController(uploads upload.ResumeStore, log *zap.Logger) *FileController {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileController{
		Uploads: uploads,
		Log:     log,
	}
}

// UploadResume stores a resume file for a future application and returns its path.
// @Summary Upload a resume
// @Description Only .pdf, .doc and .docx files within the configured size limit are permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param resume formData file true "Upload your resume file"
// @Success 200 {object} FilePathResponse "Path to pass as resumeUrl when applying"
// @Failure 400 {object} utilities.ErrorResponse "No file in the resume field"
// @Failure 413 {object} utilities.ErrorResponse "File is too large"
// @Failure 415 {object} utilities.ErrorResponse "File type is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /upload-resume [post]
func (fc *FileController) UploadResume(c *gin.Context) {
	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: fmt.Sprintf("File is larger than %d bytes", maxBytesError.Limit),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			fc.Log.Warn("failed to close uploaded file", zap.Error(err))
		}
	}()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	extension, contentType, err := upload.ValidateResume(rawFile.Filename, content)
	if err != nil {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	objectName := upload.NewResumeObjectName(extension)
	filePath, err := fc.Uploads.Save(c.Request.Context(), objectName, contentType, bytes.NewReader(content))
	if err != nil {
		fc.Log.Error("failed to store resume", zap.String("object", objectName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to store file"})
		return
	}

	fc.Log.Info("resume uploaded",
		zap.String("object", objectName),
		zap.String("content_type", contentType),
		zap.Int("size", len(content)),
	)
	c.JSON(http.StatusOK, FilePathResponse{FilePath: filePath})
}

// ServeUpload streams a stored resume.
// @Summary Download an uploaded resume
// @Tags File
// @Produce application/octet-stream
// @Param filepath path string true "Object name, e.g. resumes/<uuid>.pdf"
// @Success 200 {file} binary
// @Failure 404 {object} utilities.ErrorResponse "File not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /uploads/{filepath} [get]
func (fc *FileController) ServeUpload(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("filepath"), "/")

	reader, size, err := fc.Uploads.Open(c.Request.Context(), objectName)
	if errors.Is(err, upload.ErrInvalidObjectName) || errors.Is(err, upload.ErrNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: upload.ErrNotFound.Error()})
		return
	}
	if err != nil {
		fc.Log.Error("failed to open resume", zap.String("object", objectName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to read file"})
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			fc.Log.Warn("failed to close stored file", zap.Error(err))
		}
	}()

	contentType, ok := contentTypes[path.Ext(objectName)]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", path.Base(objectName)),
	})
}
