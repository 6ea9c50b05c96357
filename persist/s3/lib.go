package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/golang-lru/simplelru"
)

// DefaultRecentLinks is how many stored links a Persist remembers, to skip
// re-uploading them.
const DefaultRecentLinks = 1000

type S3Interface interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Persist implements the cvrdt.Persist interface for storing and loading
// snapshots as S3 objects.
type Persist struct {
	s3         S3Interface
	BucketName string
	Prefix     string
	lru        *simplelru.LRU
}

// Load loads the bytes persisted in the named object.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	input := s3.GetObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
	}
	output, err := p.s3.GetObjectWithContext(ctx, &input)
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	b, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Store persists the given bytes in an object of the given name, unless
// this Persist recently stored it. Only successful stores are remembered,
// so a damaged object that was loaded can still be repaired by storing it
// again.
func (p *Persist) Store(ctx context.Context, name string, b []byte) error {
	if p.lru.Contains(name) {
		return nil
	}
	input := s3.PutObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
		Body:   bytes.NewReader(b),
	}
	_, err := p.s3.PutObjectWithContext(ctx, &input)
	if err != nil {
		return err
	}
	p.lru.Add(name, nil)
	return nil
}

// NewPersist returns a Persist that loads and stores snapshots as
// objects with the given S3 client, bucket name and key prefix.
func NewPersist(client S3Interface, bucketName, prefix string) *Persist {
	lru, err := simplelru.NewLRU(DefaultRecentLinks, nil)
	if err != nil {
		panic(err)
	}
	return &Persist{client, bucketName, prefix, lru}
}
