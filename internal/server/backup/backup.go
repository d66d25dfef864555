// Package backup exports a snapshot of the user directory (users and their
// grants, never password material) to an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Config points the exporter at a bucket.
type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type directory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Snapshot is the document written to the bucket.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Users       []models.User `json:"users"`
}

type Result struct {
	Bucket string
	Key    string
	Users  int
}

type Exporter struct {
	dir    directory
	cfg    Config
	logger logging.Logger
	now    func() time.Time
}

func NewExporter(dir directory, cfg Config, logger logging.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		cfg:    cfg,
		logger: logger.With("module", "backup"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ObjectKey builds a date-partitioned, collision-free key.
func ObjectKey(at time.Time) string {
	return fmt.Sprintf("directory/%d/%02d/%02d/%v.json", at.Year(), at.Month(), at.Day(), uuid.New())
}

func (e *Exporter) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(e.cfg.Region)}
	if e.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(e.cfg.AccessKey, e.cfg.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if e.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Export uploads the current directory and returns where it went.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	if e.cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket not configured", common.ErrValidation)
	}

	users, err := e.dir.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	body, err := json.Marshal(Snapshot{GeneratedAt: now, Users: users})
	if err != nil {
		return nil, err
	}

	client, err := e.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	key := ObjectKey(now)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put: %w", err)
	}

	e.logger.Info(ctx, "directory exported", "bucket", e.cfg.Bucket, "key", key, "users", len(users))
	return &Result{Bucket: e.cfg.Bucket, Key: key, Users: len(users)}, nil
}
