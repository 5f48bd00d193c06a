package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

// R2Store keeps meeting files in an S3-compatible bucket (Cloudflare R2).
// Objects are keyed "<meetingId>/<fileName>"; a meeting exists only by
// virtue of the objects under its prefix.
type R2Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewR2Store initializes the R2 client using static credentials and the
// account-scoped endpoint.
func NewR2Store(accessKey, secretKey, accountID, bucket, region, publicBaseURL string) *R2Store {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		Region:      region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (rs *R2Store) key(meetingID, fileName string) string {
	return meetingID + "/" + fileName
}

func (rs *R2Store) Save(ctx context.Context, meetingID, fileName string, src io.Reader) (int64, error) {
	// PutObject needs a sized body; uploads are capped well below memory limits.
	data, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	_, err = rs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(rs.key(meetingID, fileName)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (rs *R2Store) Open(ctx context.Context, meetingID, fileName string) (io.ReadCloser, int64, error) {
	out, err := rs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(rs.key(meetingID, fileName)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, err
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// Delete removes a single object. S3 deletes are idempotent, so the object's
// existence is verified first to keep delete-of-missing an error.
func (rs *R2Store) Delete(ctx context.Context, meetingID, fileName string) error {
	key := rs.key(meetingID, fileName)

	_, err := rs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return ErrFileNotFound
		}
		return err
	}

	_, err = rs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteMeeting snapshots every object under the meeting prefix and deletes
// them concurrently. There is no directory node to remove in a bucket.
func (rs *R2Store) DeleteMeeting(ctx context.Context, meetingID string) (*PurgeResult, error) {
	prefix := meetingID + "/"

	// Listings page at 1000 keys; walk every page before deleting anything
	// so the outcome list covers the whole meeting.
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(rs.bucket),
		Prefix: aws.String(prefix),
	}
	for {
		out, err := rs.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, ErrMeetingNotFound
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	if len(keys) == 0 {
		return nil, ErrMeetingNotFound
	}

	result := &PurgeResult{
		MeetingID: meetingID,
		Outcomes:  make([]FileOutcome, len(keys)),
	}

	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			outcome := FileOutcome{FileName: strings.TrimPrefix(key, prefix)}
			_, err := rs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(rs.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Deleted = true
			}
			result.Outcomes[i] = outcome
			if !outcome.Deleted {
				return ErrPartialDelete
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, ErrPartialDelete
	}
	return result, nil
}

func (rs *R2Store) FileURL(_ *http.Request, meetingID, fileName string) string {
	return fmt.Sprintf("%s/%s", rs.publicBaseURL, rs.key(meetingID, fileName))
}
