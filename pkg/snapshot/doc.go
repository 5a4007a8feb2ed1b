// Package snapshot loads collection snapshots for diffing.
//
// A snapshot is a JSON array. Sources are named by URI: a filesystem path,
// "-" for standard input, or s3://bucket/key for an S3 object.
//
//	src, err := snapshot.Open("s3://data/items.json", snapshot.Options{Region: "us-east-1"})
//	items, err := src.Load(ctx)
package snapshot
