package ccleprep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

const gsPrefix = "gs://"

// IsGoogleStorage reports whether path names a Google Storage object.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, gsPrefix)
}

// NeedsStorageClient reports whether any of the paths is a gs:// path, in
// which case the caller should construct a storage client.
func NeedsStorageClient(paths ...string) bool {
	for _, path := range paths {
		if IsGoogleStorage(path) {
			return true
		}
	}

	return false
}

// SplitGoogleStoragePath splits gs://bucket/object/name into its bucket and
// object parts.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, gsPrefix), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into bucket and object, but got %d parts: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// OpenRaw opens path for reading without any decompression. Paths beginning
// with gs:// are read from Google Storage with client, http(s) URLs are
// fetched, and anything else is a local file.
func OpenRaw(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	switch {
	case IsGoogleStorage(path):
		if client == nil {
			return nil, pfx.Err(fmt.Errorf("%s: a google storage client is required", path))
		}
		bucketName, objectName, err := SplitGoogleStoragePath(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
		return rdr, nil

	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, pfx.Err(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, pfx.Err(fmt.Errorf("%s: unexpected status %s", path, resp.Status))
		}
		return resp.Body, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}

// OpenReader is like OpenRaw, but transparently decompresses gzip, zip, xz
// and bzip2 inputs.
func OpenReader(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	raw, err := OpenRaw(ctx, path, client)
	if err != nil {
		return nil, err
	}

	r, _, err := MaybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return &readCloser{Reader: r, close: raw.Close}, nil
}

// ReadAll returns the raw (still compressed, if applicable) bytes at path.
func ReadAll(ctx context.Context, path string, client *storage.Client) ([]byte, error) {
	rc, err := OpenRaw(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return b, nil
}

// CreateWriter opens path for writing, truncating any existing local file.
// For gs:// paths the object is only committed once Close returns nil.
func CreateWriter(ctx context.Context, path string, client *storage.Client) (io.WriteCloser, error) {
	if IsGoogleStorage(path) {
		if client == nil {
			return nil, pfx.Err(fmt.Errorf("%s: a google storage client is required", path))
		}
		bucketName, objectName, err := SplitGoogleStoragePath(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return client.Bucket(bucketName).Object(objectName).NewWriter(ctx), nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}

// JoinPath appends name to dir, respecting gs:// separators.
func JoinPath(dir, name string) string {
	if IsGoogleStorage(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}

	return filepath.Join(dir, name)
}

// readCloser pairs a decompressing reader with the Close of the underlying
// stream.
type readCloser struct {
	io.Reader
	close func() error
}

func (c *readCloser) Close() error {
	return c.close()
}
