package utils

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3-compatible object storage, configured from the environment.
var (
	s3AccessKey = os.Getenv("S3_ACCESS_KEY")
	s3SecretKey = os.Getenv("S3_SECRET_KEY")
	s3Bucket    = envOr("S3_BUCKET", "tamaq-media")
	s3Region    = envOr("S3_REGION", "us-east-1")
	s3Endpoint  = envOr("S3_ENDPOINT", "https://object.pscloud.io")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getS3Client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(s3Region),
		Endpoint:    aws.String(s3Endpoint),
		Credentials: credentials.NewStaticCredentials(s3AccessKey, s3SecretKey, ""),
	}))
	return s3.New(sess)
}

// UploadFileToS3 stores a file under folder/fileName and returns its public URL.
func UploadFileToS3(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	contentType := http.DetectContentType(file)

	s3Client := getS3Client()
	_, err := s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s3Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.object.pscloud.io/%s", s3Bucket, filePath), nil
}
