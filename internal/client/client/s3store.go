package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/documents"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Options configures the S3 backend. An empty Endpoint uses AWS; set it
// (e.g. http://localhost:9000) for MinIO.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Store keeps every document as a JSON object under
// collection/userId/docId.json.
type S3Store struct {
	api    S3API
	bucket string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(api, opts.Bucket), nil
}

func newS3Store(api S3API, bucket string) *S3Store {
	return &S3Store{api: api, bucket: bucket}
}

func objectKey(collection, userID, id string) string {
	return path.Join(collection, userID, id) + ".json"
}

func (s *S3Store) Put(ctx context.Context, collection string, doc documents.Document) error {
	userID := doc.String(documents.FieldUserID, "")
	if userID == "" || doc.ID == "" {
		return fmt.Errorf("%w: %s document without id or userId", common.ErrInvalidRecord, collection)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, doc.ID, err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(collection, userID, doc.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return mapS3Error(fmt.Sprintf("put %s/%s", collection, doc.ID), err)
	}
	return nil
}

// Query lists the caller's prefix when the filter names a user, otherwise
// the whole collection, and applies the filters to the decoded documents.
func (s *S3Store) Query(ctx context.Context, q documents.Query) ([]documents.Document, error) {
	prefix := q.Collection + "/"
	if u, ok := q.Equals[documents.FieldUserID].(string); ok && u != "" {
		prefix += u + "/"
	}

	p := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var result []documents.Document
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error("list "+prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			doc, ok, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			if ok && doc.Matches(q) {
				result = append(result, doc)
			}
		}
	}
	return result, nil
}

// get reports ok=false for objects that are not valid JSON documents.
func (s *S3Store) get(ctx context.Context, key string) (documents.Document, bool, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return documents.Document{}, false, mapS3Error("get "+key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return documents.Document{}, false, fmt.Errorf("%w: read %s: %v", common.ErrUnavailable, key, err)
	}

	var doc documents.Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil || doc.ID == "" {
		return documents.Document{}, false, nil
	}
	return doc, true, nil
}

func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return mapS3Error("head bucket "+s.bucket, err)
	}
	return nil
}

func mapS3Error(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden":
			return fmt.Errorf("%w: %s: %s", common.ErrUnauthorized, op, apiErr.ErrorMessage())
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrUnavailable, op, err)
}
