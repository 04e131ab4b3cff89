package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	sc "github.com/dmitrijs2005/mediagate/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T) *s3.PutObjectInput {
	t.Helper()

	origLoad, origNew, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000/" {
			t.Fatalf("BaseEndpoint not applied")
		}
		if !opts.UsePathStyle {
			t.Fatalf("path style not enabled")
		}
		return &s3.Client{}
	}

	captured := &s3.PutObjectInput{}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		*captured = *in
		return &s3.PutObjectOutput{}, nil
	}
	return captured
}

func newReportService(e *env) *ReportService {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.OwnerID = testOwner
	return NewReportService(e.db, e.rm, cfg, e.clock, logging.NopLogger{})
}

func TestExportUsage_UploadsReport(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	captured := stubS3(t)

	e.usage.Record(ctx, "u1", "Youtube", "a")
	e.usage.Record(ctx, "u2", "Vimeo", "b")

	key, err := newReportService(e).ExportUsage(ctx, testOwner)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^reports/usage/2023/11/14/[0-9a-f-]{36}\.json$`), key)

	assert.Equal(t, "reports", aws.ToString(captured.Bucket))
	assert.Equal(t, key, aws.ToString(captured.Key))

	body, err := io.ReadAll(captured.Body)
	require.NoError(t, err)

	var rep usageReport
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, testStart.Unix(), rep.GeneratedAt)
	require.Len(t, rep.Users, 2)
	assert.Equal(t, "u1", rep.Users[0].UserID)
	assert.Equal(t, int64(1), rep.Users[0].PerPlatform["Youtube"])
}

func TestExportUsage_Errors(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	stubS3(t)
	svc := newReportService(e)

	_, err := svc.ExportUsage(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket missing")
	}
	_, err = svc.ExportUsage(ctx, testOwner)
	assert.ErrorContains(t, err, "bucket missing")

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = svc.ExportUsage(ctx, testOwner)
	assert.ErrorContains(t, err, "load-fail")
}

func TestReportKey_UsesUTCDate(t *testing.T) {
	at := time.Date(2024, 2, 3, 23, 30, 0, 0, time.FixedZone("X", -5*3600))
	assert.Regexp(t, `^reports/usage/2024/02/04/`, ReportKey(at))
}
