package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of *s3.Client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a snapshot from an S3 object.
type S3Source struct {
	Bucket string
	Key    string
	Raw    bool

	client ObjectGetter
}

// NewS3Source returns a source for s3://bucket/key. Without opts.S3 a
// client is built from opts.Region, opts.Endpoint and the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Source(bucket, key string, opts Options) *S3Source {
	client := opts.S3
	if client == nil {
		client = NewS3Client(opts.Region, opts.Endpoint)
	}
	return &S3Source{Bucket: bucket, Key: key, Raw: opts.Raw, client: client}
}

// NewS3Client builds an S3 client with credentials from the environment.
// Requests are anonymous when no access key is set.
func NewS3Client(region, endpoint string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials))
	}

	return s3.New(s3.Options{
		Region:      region,
		Credentials: creds,
	}, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, fmt.Errorf("snapshot: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must both be set")
	}
	return creds, nil
}

// Load fetches and decodes the object.
func (s *S3Source) Load(ctx context.Context) ([]any, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data, s.Raw)
}

// Read fetches the object body.
func (s *S3Source) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: get %s: %w", s, err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", s, err)
	}
	return data, nil
}

func (s *S3Source) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}
