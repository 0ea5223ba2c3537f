package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	sc "github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Transcript is the exported form of a chat session.
type Transcript struct {
	SessionID  string              `json:"session_id"`
	Title      string              `json:"title"`
	Username   string              `json:"username"`
	CreatedAt  time.Time           `json:"created_at"`
	ExportedAt time.Time           `json:"exported_at"`
	Messages   []TranscriptMessage `json:"messages"`
}

type TranscriptMessage struct {
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ExportService uploads chat transcripts to an S3 compatible bucket and
// hands out presigned download links.
type ExportService struct {
	conv   *ConversationService
	config *sc.Config
	logger logging.Logger
}

func NewExportService(conv *ConversationService, config *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		conv:   conv,
		config: config,
		logger: logger.With("module", "export"),
	}
}

// Enabled reports whether a bucket is configured.
func (s *ExportService) Enabled() bool {
	return s.config != nil && s.config.ExportEnabled()
}

func TranscriptKey(t time.Time) string {
	return fmt.Sprintf("transcripts/%d/%d/%d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ExportService) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// Export uploads the transcript of a session owned by username and returns a
// presigned GET URL for it. A disabled export yields common.ErrorNotFound.
func (s *ExportService) Export(ctx context.Context, username, sessionID string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: transcript export is not configured", common.ErrorNotFound)
	}

	session, err := s.conv.Session(ctx, username, sessionID)
	if err != nil {
		return "", err
	}
	msgs, err := s.conv.Messages(ctx, username, sessionID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	tr := Transcript{
		SessionID:  session.ID,
		Title:      session.Title,
		Username:   session.UserName,
		CreatedAt:  session.CreatedAt,
		ExportedAt: now,
		Messages:   make([]TranscriptMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		tr.Messages = append(tr.Messages, TranscriptMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	body, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	client, presigner, err := s.getClients(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client setup failed", "error", err)
		return "", fmt.Errorf("%w: s3 config: %v", common.ErrService, err)
	}

	bucket := s.config.S3Bucket
	key := TranscriptKey(now)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error(ctx, "transcript upload failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: upload transcript: %v", common.ErrService, err)
	}

	req, err := presignGetObject(presigner, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignValidityDuration))
	if err != nil {
		s.logger.Error(ctx, "presign failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: presign transcript: %v", common.ErrService, err)
	}

	s.logger.Info(ctx, "transcript exported", "username", username, "session_id", sessionID, "key", key, "messages", len(msgs))
	return req.URL, nil
}
