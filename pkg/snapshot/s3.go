package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/canopy/internal/errors"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store stores snapshots in an S3 bucket under prefix/<id>/.
//
// Example usage:
//
//	client := snapshot.NewS3Client("eu-west-1", "")
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store over bucket. prefix may be empty.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client builds an S3 client from static environment credentials
// (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN). A non-empty
// endpoint selects an S3-compatible service and path-style addressing.
func NewS3Client(region, endpoint string) *s3.Client {
	opts := s3.Options{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func (s *S3Store) key(id, name string) string {
	return s.prefix + path.Join(id, name)
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, snap *Snapshot) error {
	manifest, err := snap.MarshalManifest()
	if err != nil {
		return errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	objects := []struct {
		name        string
		contentType string
		body        []byte
	}{
		{HTMLFile, "text/html; charset=utf-8", []byte(snap.HTML)},
		{ManifestFile, "application/yaml", manifest},
	}
	for _, obj := range objects {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.key(snap.ID, obj.name)),
			Body:        bytes.NewReader(obj.body),
			ContentType: aws.String(obj.contentType),
			Metadata: map[string]string{
				"snapshot-id": snap.ID,
			},
		})
		if err != nil {
			return errors.New(errors.ErrSnapshotStore).Wrap(err).
				WithDetailf("put s3://%s/%s", s.bucket, s.key(snap.ID, obj.name))
		}
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err).
			WithDetailf("get s3://%s/%s", s.bucket, key)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err)
	}
	return data, nil
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	html, err := s.get(ctx, s.key(id, HTMLFile))
	if err != nil {
		return nil, err
	}
	manifest, err := s.get(ctx, s.key(id, ManifestFile))
	if err != nil {
		return nil, err
	}
	return decode(html, manifest)
}

// List implements Store. Only ids with a stored manifest are returned.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(errors.ErrSnapshotStore).Wrap(err)
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			id, name, ok := strings.Cut(rel, "/")
			if ok && name == ManifestFile {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
