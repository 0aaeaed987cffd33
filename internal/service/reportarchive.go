package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/launchpanel/hub/internal/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ReportArchiver uploads one-click reports to an S3-compatible bucket for
// long-term retention. Optional: a nil *ReportArchiver is a no-op.
type ReportArchiver struct {
	client *minio.Client
	bucket string
}

type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewReportArchiver returns nil when no endpoint is configured.
func NewReportArchiver(cfg ArchiveConfig) (*ReportArchiver, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &ReportArchiver{client: client, bucket: cfg.Bucket}, nil
}

// Archive stores the report as timestamped JSON under oneclick/.
func (a *ReportArchiver) Archive(ctx context.Context, run *model.BatchRun) error {
	if a == nil {
		return nil
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	object := fmt.Sprintf("oneclick/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	_, err = a.client.PutObject(ctx, a.bucket, object,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s: %w", object, err)
	}
	return nil
}
