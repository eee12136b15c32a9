package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
)

const maxUploadSizeBytes int64 = 20 * 1024 * 1024

var csvMimeTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

// readUpload reads one multipart CSV file fully into memory.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, utils.NewValidationError(field, "file is required")
	}
	if fh.Size > maxUploadSizeBytes {
		return nil, utils.NewValidationError(field, fmt.Sprintf("file exceeds %d MB", maxUploadSizeBytes>>20))
	}
	if !isCSVUpload(fh) {
		return nil, utils.NewValidationError(field, utils.BadFileMessage)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return nil, utils.NewValidationError(field, fmt.Sprintf("file exceeds %d MB", maxUploadSizeBytes>>20))
	}
	logUpload(c, field, fh.Filename, len(data))
	return data, nil
}

func isCSVUpload(fh *multipart.FileHeader) bool {
	mimeType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if csvMimeTypes[mimeType] {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fh.Filename), ".csv")
}

func logUpload(c *gin.Context, field string, fileName string, size int) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	username, _ := utils.GetUsernameFromContext(c.Request.Context())
	config.GetLogger().WithFields(logrus.Fields{
		"field":          field,
		"file_name":      fileName,
		"size":           size,
		"username":       username,
		"correlation_id": cid,
	}).Info("[upload]")
}

// sendFile writes a generated file as an attachment.
func sendFile(c *gin.Context, fileName string, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, contentType, data)
}

// archivedReportHandler streams a previously archived report back from the bucket.
func archivedReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		objectKey := strings.TrimSpace(c.Query("key"))
		if objectKey == "" || strings.Contains(objectKey, "..") || strings.HasPrefix(objectKey, "/") {
			badRequest(c, "invalid key")
			return
		}
		if !utils.ReportArchiveEnabled() {
			badRequest(c, "report archive is not configured")
			return
		}
		report, err := utils.OpenArchivedReport(c.Request.Context(), objectKey)
		if err != nil {
			respondError(c, "archivedReport", err)
			return
		}
		defer report.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, report); err != nil {
			respondError(c, "archivedReport", err)
			return
		}
		contentType := report.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}
