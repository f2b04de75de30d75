package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"
	"whatsapp-console/config"
	"whatsapp-console/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Service archives raw contact-import uploads so a bad import can be
// re-run or inspected later. The console works fine without it.
type S3Service struct {
	s3Client *s3.S3
	config   *config.S3Config
}

func NewS3Service(config *config.S3Config) (*S3Service, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:    aws.String(config.ServiceUrl),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating S3 session: %v", err)
	}

	return &S3Service{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// ArchiveImportFile stores the upload under imports/ with a unique name
// and returns the object URL.
func (s *S3Service) ArchiveImportFile(data []byte, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	key := fmt.Sprintf("imports/%d%s", time.Now().UnixNano(), ext)

	utils.LogInfo("Archiving import file to S3: %s", key)

	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(utils.ContentTypeForFilename(originalName)),
	}

	_, err := s.s3Client.PutObject(params)
	if err != nil {
		return "", fmt.Errorf("error uploading to S3: %v", err)
	}

	fileUrl := fmt.Sprintf("%s/%s", s.config.BucketUrl, key)
	utils.LogInfo("Import file archived: %s", fileUrl)

	return fileUrl, nil
}
