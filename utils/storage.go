package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC; GCS_CREDENTIALS_JSON is for local runs.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ReportArchiveEnabled reports whether generated files are copied to GCS.
func ReportArchiveEnabled() bool {
	return strings.TrimSpace(os.Getenv("GCS_BUCKET")) != ""
}

// ArchiveReport uploads a generated report and returns its gs:// location.
func ArchiveReport(ctx context.Context, objectName string, contentType string, data []byte) (string, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs upload %q: %w", objectName, err)
	}
	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}

// ArchivedReport is an open reader over an archived report object.
type ArchivedReport struct {
	io.ReadCloser
	ContentType string
	Size        int64
	client      *storage.Client
}

func (a *ArchivedReport) Close() error {
	err := a.ReadCloser.Close()
	if cerr := a.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenArchivedReport opens objectName from the report bucket. A missing object returns ErrorRecordNotFound.
func OpenArchivedReport(ctx context.Context, objectName string) (*ArchivedReport, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	obj := client.Bucket(bucketName).Object(objectName)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		_ = client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	reader, err := obj.NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &ArchivedReport{ReadCloser: reader, ContentType: attrs.ContentType, Size: attrs.Size, client: client}, nil
}
