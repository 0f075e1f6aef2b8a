package storage

import (
	"fmt"
	"net/url"
)

// splitPrefix removes the "prefix" query parameter from a connection URL
// and returns the remaining URL together with the prefix value.
func splitPrefix(connectionString string) (string, string, error) {
	parsed, err := url.Parse(connectionString)
	if err != nil {
		return "", "", fmt.Errorf("invalid connection string: %w", err)
	}
	query := parsed.Query()
	prefix := query.Get("prefix")
	query.Del("prefix")
	parsed.RawQuery = query.Encode()
	return parsed.String(), prefix, nil
}
