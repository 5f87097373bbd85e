package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/warehouse-be/internal/adapters/storage"
	"github.com/ammerola/warehouse-be/test/helpers"
)

const testBucket = "test-bucket"

var deleteKeyPattern = regexp.MustCompile(`<Key>([^<]+)</Key>`)

// fakeS3 answers the handful of S3 calls the adapter makes
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(req.URL.Path, "/"+testBucket)
	key := strings.TrimPrefix(path, "/")
	query := req.URL.Query()

	switch {
	case req.Method == http.MethodGet && query.Get("list-type") == "2":
		prefix := query.Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>",
				k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, b.String()), nil

	case req.Method == http.MethodPost && query.Has("delete"):
		body, _ := io.ReadAll(req.Body)
		for _, m := range deleteKeyPattern.FindAllStringSubmatch(string(body), -1) {
			delete(f.objects, m[1])
		}
		return respond(http.StatusOK, `<?xml version="1.0"?><DeleteResult></DeleteResult>`), nil

	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		resp := respond(http.StatusOK, "")
		resp.Header.Set("ETag", `"etag"`)
		return resp, nil
	}

	return respond(http.StatusNotImplemented, ""), nil
}

func newTestStorage(t *testing.T) (*storage.S3Storage, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: make(map[string][]byte)}
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		BaseEndpoint: aws.String("https://mock.s3.local"),
		HTTPClient:   &http.Client{Transport: fake},
		UsePathStyle: true,
		Retryer:      aws.NopRetryer{},
		// plain bodies keep the fake transport free of aws-chunked framing
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})

	return storage.NewS3StorageFromClient(client, testBucket, helpers.TestLogger()), fake
}

func TestS3Storage_UploadAndList(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStorage(t)

	location, err := store.Upload(ctx, "exports/2024/01/01/job-1/warehouses.csv",
		bytes.NewReader([]byte("id,items\n")), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "s3://test-bucket/exports/2024/01/01/job-1/warehouses.csv", location)
	assert.Contains(t, fake.objects, "exports/2024/01/01/job-1/warehouses.csv")

	_, err = store.Upload(ctx, "other/file.csv", strings.NewReader("x"), "")
	require.NoError(t, err)

	_, err = store.Upload(ctx, "exports/unseekable.csv", io.NopCloser(strings.NewReader("id\n")), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("id\n"), fake.objects["exports/unseekable.csv"])

	objects, err := store.List(ctx, "exports/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "exports/2024/01/01/job-1/warehouses.csv", objects[0].Key)
	assert.Equal(t, "exports/unseekable.csv", objects[1].Key)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), objects[0].LastModified.UTC())
}

func TestS3Storage_Delete(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStorage(t)

	fake.objects["exports/a.csv"] = []byte("a")
	fake.objects["exports/b.csv"] = []byte("b")
	fake.objects["exports/c.csv"] = []byte("c")

	require.NoError(t, store.Delete(ctx, "exports/a.csv", "exports/b.csv"))
	assert.Len(t, fake.objects, 1)
	assert.Contains(t, fake.objects, "exports/c.csv")

	require.NoError(t, store.Delete(ctx))
}

func TestS3Storage_PresignGet(t *testing.T) {
	store, _ := newTestStorage(t)

	url, err := store.PresignGet(context.Background(), "exports/a.csv", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/test-bucket/exports/a.csv")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
