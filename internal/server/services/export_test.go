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
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	sc "github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

func exportConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.S3Bucket = "agentdesk"
	cfg.S3RootUser = "minioadmin"
	cfg.S3RootPassword = "minioadmin"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	return cfg
}

type s3Capture struct {
	region       string
	baseEndpoint string
	pathStyle    bool
	bucket       string
	key          string
	body         []byte
	expires      time.Duration
}

func stubS3(t *testing.T, putErr, presignErr error) *s3Capture {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origGet
	})

	c := &s3Capture{}
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		c.region = lo.Region
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			c.baseEndpoint = *opts.BaseEndpoint
		}
		c.pathStyle = opts.UsePathStyle
		return &s3.Client{}
	}
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if putErr != nil {
			return nil, putErr
		}
		c.bucket = *in.Bucket
		c.key = *in.Key
		body, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		c.body = body
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		c.expires = po.Expires
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/" + *in.Bucket + "/" + *in.Key + "?sig"}, nil
	}
	return c
}

func seededConv(t *testing.T) (*ConversationService, string) {
	t.Helper()
	ctx := context.Background()
	conv, _, _ := newConv(t)
	id, err := conv.AppendMessage(ctx, "alice", "", models.RoleUser, "intent: Follow-up")
	require.NoError(t, err)
	_, err = conv.AppendMessage(ctx, "alice", id, models.RoleAgent, "Dear Bob")
	require.NoError(t, err)
	return conv, id
}

func TestExportService_Export(t *testing.T) {
	capture := stubS3(t, nil, nil)
	conv, id := seededConv(t)
	svc := NewExportService(conv, exportConfig(), logging.Nop())

	url, err := svc.Export(context.Background(), "alice", id)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", capture.region)
	assert.Equal(t, "http://127.0.0.1:9000", capture.baseEndpoint)
	assert.True(t, capture.pathStyle)
	assert.Equal(t, "agentdesk", capture.bucket)
	assert.Regexp(t, regexp.MustCompile(`^transcripts/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}\.json$`), capture.key)
	assert.Equal(t, 15*time.Minute, capture.expires)
	assert.Contains(t, url, capture.key)

	var tr Transcript
	require.NoError(t, json.Unmarshal(capture.body, &tr))
	assert.Equal(t, id, tr.SessionID)
	assert.Equal(t, "alice", tr.Username)
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, models.RoleUser, tr.Messages[0].Role)
	assert.Equal(t, "Dear Bob", tr.Messages[1].Content)
}

func TestExportService_Disabled(t *testing.T) {
	conv, id := seededConv(t)
	cfg := exportConfig()
	cfg.S3Bucket = ""
	svc := NewExportService(conv, cfg, logging.Nop())

	assert.False(t, svc.Enabled())
	_, err := svc.Export(context.Background(), "alice", id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExportService_ForeignSession(t *testing.T) {
	stubS3(t, nil, nil)
	conv, id := seededConv(t)
	svc := NewExportService(conv, exportConfig(), logging.Nop())

	_, err := svc.Export(context.Background(), "mallory", id)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestExportService_S3Failures(t *testing.T) {
	tests := []struct {
		name       string
		putErr     error
		presignErr error
	}{
		{"put", errors.New("access denied"), nil},
		{"presign", nil, errors.New("bad creds")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubS3(t, tt.putErr, tt.presignErr)
			conv, id := seededConv(t)
			svc := NewExportService(conv, exportConfig(), logging.Nop())

			_, err := svc.Export(context.Background(), "alice", id)
			assert.ErrorIs(t, err, common.ErrService)
		})
	}
}

func TestExportService_ConfigLoadFailure(t *testing.T) {
	stubS3(t, nil, nil)
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	conv, id := seededConv(t)
	svc := NewExportService(conv, exportConfig(), logging.Nop())

	_, err := svc.Export(context.Background(), "alice", id)
	assert.ErrorIs(t, err, common.ErrService)
	assert.ErrorContains(t, err, "load-fail")
}
