package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRegion = "us-east-1"
	DefaultPrefix = "weekly-reports"
	maxUploads    = 4
)

// ObjectPutter is the subset of the S3 client the publisher uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Artifact is one rendered form of a report
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
}

func LoadConfig(ctx context.Context, profile string) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

func NewPublisher(client ObjectPutter, bucket, prefix string) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{client: client, bucket: bucket, prefix: prefix}, nil
}

func NewFromConfig(cfg awssdk.Config, bucket, prefix string) (*Publisher, error) {
	return NewPublisher(s3.NewFromConfig(cfg), bucket, prefix)
}

// Key returns the object key of an artifact: <prefix>/<year>/W<week>/<report id>/<name>
func (p *Publisher) Key(w domain.ISOWeek, reportID, name string) string {
	return path.Join(p.prefix, fmt.Sprintf("%d", w.Year), fmt.Sprintf("W%02d", w.Week), reportID, name)
}

// Publish uploads all artifacts concurrently and returns their s3 URIs in
// artifact order. Any failed upload fails the publish.
func (p *Publisher) Publish(ctx context.Context, w domain.ISOWeek, reportID string, artifacts []Artifact) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	uris := make([]string, len(artifacts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxUploads)
	for i, a := range artifacts {
		key := p.Key(w, reportID, a.Name)
		g.Go(func() error {
			_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      awssdk.String(p.bucket),
				Key:         awssdk.String(key),
				Body:        bytes.NewReader(a.Body),
				ContentType: awssdk.String(a.ContentType),
			})
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", key, err)
			}
			uris[i] = fmt.Sprintf("s3://%s/%s", p.bucket, key)
			logger.Debug().Str("key", key).Int("bytes", len(a.Body)).Msg("artifact uploaded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}
