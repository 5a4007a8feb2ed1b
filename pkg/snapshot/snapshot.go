package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxSnapshotSize bounds how much a single source may read.
const MaxSnapshotSize = 256 << 20

// Source loads one snapshot. Read returns the undecoded document.
type Source interface {
	Load(ctx context.Context) ([]any, error)
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// Options configures decoding and remote access.
type Options struct {
	// Raw keeps elements as json.RawMessage instead of decoding them.
	Raw bool

	// Stdin replaces os.Stdin for the "-" source.
	Stdin io.Reader

	// Region and Endpoint configure S3 access. Endpoint is optional and
	// selects path-style addressing, e.g. for MinIO.
	Region   string
	Endpoint string

	// S3 overrides the S3 client.
	S3 ObjectGetter
}

// Open returns the source named by uri.
func Open(uri string, opts Options) (Source, error) {
	switch {
	case uri == "":
		return nil, fmt.Errorf("snapshot: empty source")
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("snapshot: invalid S3 URI %q, want s3://bucket/key", uri)
		}
		return NewS3Source(bucket, key, opts), nil
	default:
		return &FileSource{Path: uri, Raw: opts.Raw, Stdin: opts.Stdin}, nil
	}
}

// LoadSequence opens and loads each uri in order.
func LoadSequence(ctx context.Context, uris []string, opts Options) ([][]any, error) {
	out := make([][]any, 0, len(uris))
	for _, uri := range uris {
		src, err := Open(uri, opts)
		if err != nil {
			return nil, err
		}
		items, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, items)
	}
	return out, nil
}

// Decode parses a JSON array snapshot.
func Decode(data []byte, raw bool) ([]any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}

	out := make([]any, len(elems))
	for i, e := range elems {
		if raw {
			out[i] = e
			continue
		}
		if err := json.Unmarshal(e, &out[i]); err != nil {
			return nil, fmt.Errorf("snapshot: decode element %d: %w", i, err)
		}
	}
	return out, nil
}

// DecodeSequence parses a JSON array of snapshots.
func DecodeSequence(data []byte, raw bool) ([][]any, error) {
	var snaps []json.RawMessage
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("snapshot: decode sequence: %w", err)
	}
	out := make([][]any, len(snaps))
	for i, s := range snaps {
		items, err := Decode(s, raw)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		out[i] = items
	}
	return out, nil
}

// FileSource reads a snapshot from a file, or from stdin when Path is "-".
type FileSource struct {
	Path  string
	Raw   bool
	Stdin io.Reader
}

// Load reads and decodes the file.
func (s *FileSource) Load(ctx context.Context) ([]any, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data, s.Raw)
}

// Read returns the file contents.
func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		data []byte
		err  error
	)
	if s.Path == "-" {
		in := s.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err = readLimited(in)
	} else {
		var f *os.File
		if f, err = os.Open(s.Path); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		defer f.Close()
		data, err = readLimited(f)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", s, err)
	}
	return data, nil
}

func (s *FileSource) String() string {
	if s.Path == "-" {
		return "stdin"
	}
	return s.Path
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSnapshotSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSnapshotSize {
		return nil, fmt.Errorf("snapshot exceeds %d bytes", MaxSnapshotSize)
	}
	return data, nil
}
