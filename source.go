package clustertls

import (
	"encoding/base64"
	"fmt"
	"os"
)

// resolveByteSource selects the raw bytes for one configuration field:
// inline base64 data is preferred, a file path is the fallback, and both
// absent yields (nil, nil). When data is present the file is never read.
// The same precedence applies independently to the client certificate,
// client key, and CA bundle fields.
func resolveByteSource(data, file string) ([]byte, error) {
	if data != "" {
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decoding inline base64 data: %w", err)
		}
		return raw, nil
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		return raw, nil
	}
	return nil, nil
}
