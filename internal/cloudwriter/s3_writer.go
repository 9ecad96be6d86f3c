package cloudwriter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Writer struct {
	ctx        context.Context
	client     *s3.Client
	bucket     string
	objectPath string
	buffer     bytes.Buffer
}

type S3WriterFactory struct {
	ctx    context.Context
	client *s3.Client
}

func NewS3WriterFactory(ctx context.Context, region string) (*S3WriterFactory, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3WriterFactory{ctx: ctx, client: s3.NewFromConfig(cfg)}, nil
}

func (f *S3WriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no bucket configured for %s", objectPath)
	}
	return &S3Writer{
		ctx:        f.ctx,
		client:     f.client,
		bucket:     bucket,
		objectPath: objectPath,
	}, nil
}

func (w *S3Writer) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *S3Writer) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.objectPath),
		Body:        bytes.NewReader(w.buffer.Bytes()),
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return fmt.Errorf("unable to upload %s to S3: %w", w.objectPath, err)
	}
	return nil
}

// MemoryWriterFactory keeps uploaded objects in memory, keyed by bucket/path.
type MemoryWriterFactory struct {
	Objects map[string][]byte
}

func NewMemoryWriterFactory() *MemoryWriterFactory {
	return &MemoryWriterFactory{Objects: make(map[string][]byte)}
}

func (f *MemoryWriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	return &memoryWriter{factory: f, key: bucket + "/" + objectPath}, nil
}

type memoryWriter struct {
	factory *MemoryWriterFactory
	key     string
	buffer  bytes.Buffer
}

func (w *memoryWriter) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *memoryWriter) Close() error {
	w.factory.Objects[w.key] = w.buffer.Bytes()
	return nil
}
