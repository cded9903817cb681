package datasource

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers path-style GetObject requests from an in-memory map keyed
// by "bucket/key".
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	key := strings.TrimPrefix(req.URL.Path, "/")
	body, ok := f.objects[key]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code></Error>`)),
			Header:     http.Header{"Content-Type": {"application/xml"}},
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header: http.Header{
			"Content-Length": {strconv.Itoa(len(body))},
			"Content-Type":   {"application/json"},
		},
	}, nil
}

func newFakeS3Source(t *testing.T, uri string, objects map[string][]byte) *S3Source {
	t.Helper()
	src, err := NewS3Source(context.Background(), uri, S3Config{
		Region:              "us-east-1",
		Endpoint:            "https://mock.s3.local",
		PathStyle:           true,
		CredentialsProvider: credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		HTTPClient:          &http.Client{Transport: &fakeS3{objects: objects}},
	})
	require.NoError(t, err)
	return src
}

func TestS3Source_Load(t *testing.T) {
	src := newFakeS3Source(t, "s3://seed/safetynet/data.json", map[string][]byte{
		"seed/safetynet/data.json": []byte(sampleJSON),
	})
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Persons, 2)
	assert.Len(t, ds.FireStations, 2)
	assert.Equal(t, "s3://seed/safetynet/data.json", src.Describe())
}

func TestS3Source_MissingObject(t *testing.T) {
	src := newFakeS3Source(t, "s3://seed/absent.json", map[string][]byte{})
	_, err := src.Load(context.Background())
	assert.Error(t, err)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://seed/a/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, "seed", bucket)
	assert.Equal(t, "a/b.yaml", key)

	for _, bad := range []string{"s3://seed", "s3:///key", "http://seed/key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}
