// Package config loads and saves iterdiff.json.
//
// Example configuration:
//
//	{
//	  "trackBy": { "field": "id" },
//	  "output": { "format": "text" },
//	  "server": { "host": "localhost", "port": 8080, "sessionTTL": "15m", "metrics": true },
//	  "s3": { "region": "us-east-1" },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// Missing fields take the defaults from New. Command-line flags override
// file values.
package config
