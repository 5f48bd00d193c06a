package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both backends must satisfy the Store interface.
var (
	_ Store = (*DiskStore)(nil)
	_ Store = (*R2Store)(nil)
)

func TestR2Store_KeyLayout(t *testing.T) {
	rs := NewR2Store("ak", "sk", "acct", "meetdrop", "auto", "https://files.example.com/")

	assert.Equal(t, "m1/m1_abc.txt", rs.key("m1", "m1_abc.txt"))
}

func TestR2Store_FileURL(t *testing.T) {
	rs := NewR2Store("ak", "sk", "acct", "meetdrop", "auto", "https://files.example.com/")

	url := rs.FileURL(nil, "m1", "m1_abc.txt")
	assert.Equal(t, "https://files.example.com/m1/m1_abc.txt", url)
}

// newStubR2Store points the S3 client at a local stub bucket endpoint.
func newStubR2Store(endpoint string) *R2Store {
	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider("ak", "sk", ""),
		Region:      "auto",
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &R2Store{client: client, bucket: "meetdrop", publicBaseURL: "https://files.example.com"}
}

const listPageOne = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
	<Name>meetdrop</Name>
	<Prefix>m1/</Prefix>
	<KeyCount>2</KeyCount>
	<IsTruncated>true</IsTruncated>
	<NextContinuationToken>page-2</NextContinuationToken>
	<Contents><Key>m1/m1_a.txt</Key></Contents>
	<Contents><Key>m1/m1_b.txt</Key></Contents>
</ListBucketResult>`

const listPageTwo = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
	<Name>meetdrop</Name>
	<Prefix>m1/</Prefix>
	<KeyCount>1</KeyCount>
	<IsTruncated>false</IsTruncated>
	<Contents><Key>m1/m1_c.txt</Key></Contents>
</ListBucketResult>`

const listEmpty = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
	<Name>meetdrop</Name>
	<Prefix>ghost/</Prefix>
	<KeyCount>0</KeyCount>
	<IsTruncated>false</IsTruncated>
</ListBucketResult>`

// The meeting purge must walk every listing page, not just the first one.
func TestR2Store_DeleteMeetingPaginates(t *testing.T) {
	var mu sync.Mutex
	deleted := make(map[string]bool)
	listCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			mu.Lock()
			listCalls++
			mu.Unlock()
			w.Header().Set("Content-Type", "application/xml")
			if r.URL.Query().Get("continuation-token") == "page-2" {
				fmt.Fprint(w, listPageTwo)
			} else {
				fmt.Fprint(w, listPageOne)
			}
		case r.Method == http.MethodDelete:
			mu.Lock()
			deleted[strings.TrimPrefix(r.URL.Path, "/meetdrop/")] = true
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	rs := newStubR2Store(srv.URL)
	result, err := rs.DeleteMeeting(context.Background(), "m1")
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 3)
	for _, o := range result.Outcomes {
		assert.True(t, o.Deleted, "expected %s to be deleted", o.FileName)
	}
	assert.Equal(t, 2, listCalls, "both listing pages must be fetched")
	assert.Equal(t, map[string]bool{
		"m1/m1_a.txt": true,
		"m1/m1_b.txt": true,
		"m1/m1_c.txt": true,
	}, deleted)
}

func TestR2Store_DeleteMeetingMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, listEmpty)
	}))
	defer srv.Close()

	rs := newStubR2Store(srv.URL)
	_, err := rs.DeleteMeeting(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}
