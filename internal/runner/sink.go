package runner

import (
	"context"
	"fmt"
	"io"

	v1 "github.com/infracollect/archivekit/apis/v1"
	"github.com/infracollect/archivekit/internal/bundle"
	"github.com/infracollect/archivekit/internal/sinks"
	"github.com/spf13/afero"
)

// BuildSink creates the export sink described by spec. A nil spec or
// destination writes to stdout. When a bundle is configured the sink is
// wrapped so that a single bundleName file reaches the destination.
func BuildSink(ctx context.Context, fs afero.Fs, stdout io.Writer, spec *v1.ExportSpec, bundleName string) (sinks.Sink, error) {
	var destination *v1.DestinationSpec
	if spec != nil {
		destination = spec.Destination
	}

	sink, err := buildInnerSink(ctx, fs, stdout, destination)
	if err != nil {
		return nil, err
	}

	if spec == nil || spec.Bundle == "" {
		return sink, nil
	}

	tarball, err := bundle.NewTar(bundle.Format(spec.Bundle))
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	return sinks.NewBundleSink(sink, tarball, bundleName+tarball.Extension()), nil
}

func buildInnerSink(ctx context.Context, fs afero.Fs, stdout io.Writer, destination *v1.DestinationSpec) (sinks.Sink, error) {
	switch {
	case destination == nil || destination.Stdout != nil:
		return sinks.NewStreamSink(stdout), nil
	case destination.Folder != nil:
		return sinks.NewFolderSinkFromPath(fs, destination.Folder.Path)
	case destination.S3 != nil:
		return buildS3Sink(ctx, destination.S3)
	default:
		return nil, fmt.Errorf("invalid destination: no destination type specified")
	}
}

func buildS3Sink(ctx context.Context, spec *v1.S3Spec) (sinks.Sink, error) {
	return sinks.NewS3Sink(ctx, sinks.S3Config{
		Bucket:          spec.Bucket,
		Region:          spec.Region,
		Endpoint:        spec.Endpoint,
		Prefix:          spec.Prefix,
		AccessKeyID:     spec.AccessKeyID,
		SecretAccessKey: spec.SecretAccessKey,
		ForcePathStyle:  spec.ForcePathStyle,
	})
}

// IsStream reports whether sink writes to the stream it was given.
func IsStream(sink sinks.Sink) bool {
	if b, ok := sink.(*sinks.BundleSink); ok {
		return b.Inner().Kind() == "stream"
	}
	return sink.Kind() == "stream"
}
