package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions builds credential options. credsJSON wins over credsFile; a
// credsJSON value that is not an object is treated as a file path. With
// neither set the client falls back to application default credentials.
func ClientOptions(credsJSON, credsFile string) []option.ClientOption {
	creds := strings.TrimSpace(credsJSON)
	if creds == "" {
		creds = strings.TrimSpace(credsFile)
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
