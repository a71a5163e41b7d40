// Package publish uploads registry views to S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flowtomic/zoo/internal/errors"
	"github.com/flowtomic/zoo/internal/registry"
)

// Config selects the destination. Flags override the environment.
type Config struct {
	Bucket       string `env:"ZOO_PUBLISH_BUCKET"`
	Prefix       string `env:"ZOO_PUBLISH_PREFIX"`
	Region       string `env:"ZOO_PUBLISH_REGION"`
	Endpoint     string `env:"ZOO_PUBLISH_ENDPOINT"`
	CacheControl string `env:"ZOO_PUBLISH_CACHE_CONTROL" envDefault:"public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400"`
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.New("E140").Wrap(err)
	}
	return cfg, nil
}

// ObjectPutter is the part of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads a registry as a set of JSON objects.
type Publisher struct {
	client ObjectPutter
	cfg    Config
	logger *zap.Logger

	// Concurrency bounds parallel uploads. Zero means 4.
	Concurrency int
}

// New creates a Publisher using client.
func New(client ObjectPutter, cfg Config, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, cfg: cfg, logger: logger}
}

// NewS3 creates a Publisher backed by an S3 client configured from the
// standard AWS environment and shared config files.
func NewS3(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E140").
			WithDetail("load AWS configuration: " + err.Error())
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg, logger), nil
}

// object is one upload.
type object struct {
	key  string
	body []byte
}

// objects returns the keys and bodies Publish uploads: one object per
// view plus r/<name>.json per item.
func (p *Publisher) objects(reg *registry.Registry) ([]object, error) {
	var objs []object
	add := func(name string, v any) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		objs = append(objs, object{key: p.key(name), body: append(data, '\n')})
		return nil
	}

	for _, v := range registry.Views {
		if err := add(string(v)+".json", reg.View(v)); err != nil {
			return nil, err
		}
	}
	if err := add(registry.FileName, reg); err != nil {
		return nil, err
	}
	for _, it := range reg.Items {
		if err := add(path.Join(registry.ItemsDir, it.Name+".json"), reg.Item(it.Name)); err != nil {
			return nil, err
		}
	}
	return objs, nil
}

func (p *Publisher) key(name string) string {
	prefix := strings.Trim(p.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Publish uploads every object and returns the uploaded keys, sorted.
func (p *Publisher) Publish(ctx context.Context, reg *registry.Registry) ([]string, error) {
	if p.cfg.Bucket == "" {
		return nil, errors.New("E140").
			WithDetail("no bucket configured").
			WithHint("Pass --bucket or set ZOO_PUBLISH_BUCKET")
	}

	objs, err := p.objects(reg)
	if err != nil {
		return nil, errors.New("E140").Wrap(err)
	}

	limit := p.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	var keys []string
	for _, obj := range objs {
		obj := obj
		g.Go(func() error {
			_, err := p.client.PutObject(gctx, &s3.PutObjectInput{
				Bucket:       aws.String(p.cfg.Bucket),
				Key:          aws.String(obj.key),
				Body:         bytes.NewReader(obj.body),
				ContentType:  aws.String("application/json"),
				CacheControl: aws.String(p.cfg.CacheControl),
			})
			if err != nil {
				return errors.New("E140").
					WithDetail("put s3://" + p.cfg.Bucket + "/" + obj.key + ": " + err.Error()).
					Wrap(err)
			}
			p.logger.Debug("uploaded", zap.String("bucket", p.cfg.Bucket), zap.String("key", obj.key))

			mu.Lock()
			keys = append(keys, obj.key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}
