package v1

// Config describes how archivekit opens containers and exports their
// entries.
type Config struct {
	// Backend selects the zip engine (default: klauspost).
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty" validate:"omitempty,oneof=klauspost stdlib"`

	Compression *CompressionSpec `yaml:"compression,omitempty" json:"compression,omitempty"`

	Export *ExportSpec `yaml:"export,omitempty" json:"export,omitempty"`
}

// CompressionSpec configures how new records are compressed.
type CompressionSpec struct {
	// Method is one of store, deflate or zstd (default: deflate).
	Method string `yaml:"method,omitempty" json:"method,omitempty" validate:"omitempty,oneof=store deflate zstd"`

	// Level is the method specific level. 0 selects the method default.
	Level int `yaml:"level,omitempty" json:"level,omitempty" validate:"min=-2,max=22"`
}

// ExportSpec configures where exported entries are written.
type ExportSpec struct {
	// Bundle packs the exported entries into a single tarball. Empty writes
	// one file per entry.
	Bundle string `yaml:"bundle,omitempty" json:"bundle,omitempty" validate:"omitempty,oneof=tar tar.gz tar.zst"`

	Destination *DestinationSpec `yaml:"destination,omitempty" json:"destination,omitempty"`
}

// DestinationSpec configures the export destination (one of the fields
// should be set, default: stdout).
type DestinationSpec struct {
	Stdout *StdoutSpec `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Folder *FolderSpec `yaml:"folder,omitempty" json:"folder,omitempty"`
	S3     *S3Spec     `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// StdoutSpec configures stdout output (no options currently).
type StdoutSpec struct{}

// FolderSpec configures folder output with one file per entry.
type FolderSpec struct {
	// Path is the directory entries are written to.
	Path string `yaml:"path" json:"path" validate:"required" template:""`
}

// S3Spec configures upload to an S3 compatible bucket. String fields may
// reference ${VAR} variables, expanded before the sink is built.
type S3Spec struct {
	Bucket string `yaml:"bucket" json:"bucket" validate:"required" template:""`
	Region string `yaml:"region,omitempty" json:"region,omitempty" template:""`
	// Endpoint overrides the S3 endpoint, for MinIO and other compatible stores.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`
	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty" validate:"required_with=SecretAccessKey" template:""`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty" validate:"required_with=AccessKeyID" template:""`

	ForcePathStyle bool `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}
