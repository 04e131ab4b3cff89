package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mediagate/internal/clockx"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	sc "github.com/dmitrijs2005/mediagate/internal/server/config"
	"github.com/dmitrijs2005/mediagate/internal/server/repositories/repomanager"
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

type usageReport struct {
	GeneratedAt int64             `json:"generated_at"`
	Users       []usageReportUser `json:"users"`
}

type usageReportUser struct {
	UserID      string           `json:"user_id"`
	Total       int64            `json:"total"`
	PerPlatform map[string]int64 `json:"per_platform"`
}

// ReportService exports usage summaries to an S3-compatible bucket.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	clock       clockx.Clock
	log         logging.Logger
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, clock clockx.Clock, log logging.Logger) *ReportService {
	return &ReportService{db: db, repomanager: m, config: cfg, clock: clock, log: log}
}

// ReportKey returns the object key for a report generated at t.
func ReportKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("reports/usage/%04d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ReportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// ExportUsage uploads a JSON usage report and returns its object key.
// Owner only.
func (s *ReportService) ExportUsage(ctx context.Context, caller string) (string, error) {
	if err := authorizeOwner(s.config.OwnerID, caller); err != nil {
		return "", err
	}

	sums, err := s.repomanager.Usage(s.db).Summaries(ctx)
	if err != nil {
		return "", storageError("export usage", err)
	}

	now := s.clock.Now()
	report := usageReport{GeneratedAt: now.Unix(), Users: make([]usageReportUser, 0, len(sums))}
	for _, u := range sums {
		report.Users = append(report.Users, usageReportUser{UserID: u.UserID, Total: u.Total, PerPlatform: u.PerPlatform})
	}
	body, err := json.Marshal(report)
	if err != nil {
		return "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	key := ReportKey(now)
	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	s.log.Info(ctx, "usage report exported", "bucket", s.config.S3Bucket, "key", key, "users", len(report.Users))
	return key, nil
}
