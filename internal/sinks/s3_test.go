package sinks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Sink_Name(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		prefix   string
		expected string
	}{
		{name: "bucket only", bucket: "my-bucket", expected: "s3(my-bucket)"},
		{name: "bucket with prefix", bucket: "my-bucket", prefix: "exports/nightly", expected: "s3(my-bucket/exports/nightly)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewS3SinkWithUploader(tt.bucket, tt.prefix, &mockUploader{})
			assert.Equal(t, tt.expected, sink.Name())
			assert.Equal(t, "s3", sink.Kind())
		})
	}
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		path        string
		expectedKey string
	}{
		{name: "without prefix", path: "a.json", expectedKey: "a.json"},
		{name: "with prefix", prefix: "exports/2026", path: "a.json", expectedKey: "exports/2026/a.json"},
		{name: "nested path with prefix", prefix: "data", path: "dir/sub/a.json", expectedKey: "data/dir/sub/a.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("my-bucket", tt.prefix, uploader)

			err := sink.Write(t.Context(), tt.path, bytes.NewBufferString(`{"key": "value"}`))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			assert.Equal(t, "my-bucket", uploader.uploads[0].bucket)
			assert.Equal(t, tt.expectedKey, uploader.uploads[0].key)
			assert.Equal(t, `{"key": "value"}`, string(uploader.uploads[0].body))
			require.NoError(t, sink.Close(t.Context()))
		})
	}
}

func TestS3Sink_Write_ContentType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "data.json", expected: "application/json"},
		{path: "config.yaml", expected: "application/x-yaml"},
		{path: "config.yml", expected: "application/x-yaml"},
		{path: "readme.txt", expected: "text/plain"},
		{path: "bundle.zip", expected: "application/zip"},
		{path: "export.tar.gz", expected: "application/gzip"},
		{path: "export.tar.zst", expected: "application/zstd"},
		{path: "data.bin", expected: ""},
		{path: "data", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("bucket", "", uploader)

			require.NoError(t, sink.Write(t.Context(), tt.path, bytes.NewBufferString("content")))

			require.Len(t, uploader.uploads, 1)
			assert.Equal(t, tt.expected, uploader.uploads[0].contentType)
		})
	}
}

func TestS3Sink_Write_Error(t *testing.T) {
	sink := NewS3SinkWithUploader("bucket", "p", &mockUploader{err: errUpload})

	err := sink.Write(t.Context(), "a.txt", bytes.NewBufferString("content"))

	require.ErrorIs(t, err, errUpload)
	assert.ErrorContains(t, err, "s3://bucket/p/a.txt")
}
