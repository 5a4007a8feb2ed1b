package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		raw     bool
		want    int
		wantErr bool
	}{
		{"values", `[1, "a", true, null, {"k": 2}]`, false, 5, false},
		{"raw", `[{"id": 1}, {"id": 2}]`, true, 2, false},
		{"empty", `[]`, false, 0, false},
		{"null", `null`, false, 0, false},
		{"object", `{"a": 1}`, false, 0, true},
		{"invalid", `[1,`, false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data), tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecodeRawKeepsBytes(t *testing.T) {
	got, err := Decode([]byte(`[{"id":1}]`), true)
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := got[0].(json.RawMessage)
	if !ok || string(raw) != `{"id":1}` {
		t.Errorf("element = %#v", got[0])
	}
}

func TestDecodeSequence(t *testing.T) {
	seq, err := DecodeSequence([]byte(`[["a","b"],[],["b"]]`), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 3 || len(seq[0]) != 2 || len(seq[1]) != 0 || seq[2][0] != "b" {
		t.Errorf("DecodeSequence = %v", seq)
	}
	if _, err := DecodeSequence([]byte(`[["a"], 3]`), false); err == nil {
		t.Error("DecodeSequence(non-array snapshot) error = nil")
	}
}

func TestFileSource(t *testing.T) {
	path := writeFile(t, "a.json", `["x","y"]`)
	src, err := Open(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1] != "y" {
		t.Errorf("Load() = %v", items)
	}
	if src.String() != path {
		t.Errorf("String() = %q", src.String())
	}

	missing, _ := Open(filepath.Join(t.TempDir(), "nope.json"), Options{})
	if _, err := missing.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestStdinSource(t *testing.T) {
	src, err := Open("-", Options{Stdin: strings.NewReader(`[1,2,3]`)})
	if err != nil {
		t.Fatal(err)
	}
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0] != 1.0 {
		t.Errorf("Load() = %v", items)
	}
	if src.String() != "stdin" {
		t.Errorf("String() = %q", src.String())
	}
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &FileSource{Path: writeFile(t, "a.json", `[]`)}
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoadSequence(t *testing.T) {
	a := writeFile(t, "a.json", `["a"]`)
	b := writeFile(t, "b.json", `["a","b"]`)
	seq, err := LoadSequence(context.Background(), []string{a, b}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 || len(seq[1]) != 2 {
		t.Errorf("LoadSequence = %v", seq)
	}
	if _, err := LoadSequence(context.Background(), []string{a, ""}, Options{}); err == nil {
		t.Error("LoadSequence(empty uri) error = nil")
	}
}

type fakeS3 struct {
	objects map[string]string
	input   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestS3Source(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"data/snap/1.json": `[{"id":1}]`}}
	src, err := Open("s3://data/snap/1.json", Options{S3: fake, Raw: true})
	if err != nil {
		t.Fatal(err)
	}
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Load() = %v", items)
	}
	if *fake.input.Bucket != "data" || *fake.input.Key != "snap/1.json" {
		t.Errorf("GetObject(%s, %s)", *fake.input.Bucket, *fake.input.Key)
	}
	if src.String() != "s3://data/snap/1.json" {
		t.Errorf("String() = %q", src.String())
	}

	missing, _ := Open("s3://data/none.json", Options{S3: fake})
	if _, err := missing.Load(context.Background()); err == nil {
		t.Error("Load(missing object) error = nil")
	}
}

func TestOpenInvalid(t *testing.T) {
	for _, uri := range []string{"", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, err := Open(uri, Options{}); err == nil {
			t.Errorf("Open(%q) error = nil", uri)
		}
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	c := NewS3Client("eu-west-1", "http://localhost:9000")
	o := c.Options()
	if o.Region != "eu-west-1" || !o.UsePathStyle || *o.BaseEndpoint != "http://localhost:9000" {
		t.Errorf("options = region %q, path style %v", o.Region, o.UsePathStyle)
	}
}

func TestRead(t *testing.T) {
	const doc = `[[1,2],[2,1]]`
	fake := &fakeS3{objects: map[string]string{"data/history.json": doc}}

	sources := []Source{
		&FileSource{Path: writeFile(t, "history.json", doc)},
		&FileSource{Path: "-", Stdin: strings.NewReader(doc)},
		NewS3Source("data", "history.json", Options{S3: fake}),
	}
	for _, src := range sources {
		data, err := src.Read(context.Background())
		if err != nil {
			t.Fatalf("%s: Read() error = %v", src, err)
		}
		if string(data) != doc {
			t.Errorf("%s: Read() = %q, want %q", src, data, doc)
		}
		steps, err := DecodeSequence(data, false)
		if err != nil || len(steps) != 2 {
			t.Errorf("%s: DecodeSequence() = %v, %v", src, steps, err)
		}
	}
}
