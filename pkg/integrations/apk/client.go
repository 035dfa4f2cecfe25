package apk

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/pkggraph/pkg/cache"
	"github.com/matzehuels/pkggraph/pkg/integrations"
)

const (
	// ArchiveName is the file name of a repository index archive.
	ArchiveName = "APKINDEX.tar.gz"
	// MemberName is the archive member holding the index text.
	MemberName = "APKINDEX"
)

// ErrNoIndex is returned when an archive has no APKINDEX member.
var ErrNoIndex = errors.New("archive has no " + MemberName + " member")

// Client downloads repository index archives.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
}

// NewClient creates a client that caches archives in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": "pkggraph/1.0 (https://github.com/matzehuels/pkggraph)",
	}
	return &Client{
		Client: integrations.NewClient(backend, "apk", cacheTTL, headers),
	}
}

// IndexURL returns the archive URL for repo. A URL that already names a
// .tar.gz file is used as is; anything else is treated as a repository
// directory and gets "/APKINDEX.tar.gz" appended.
func IndexURL(repo string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(repo))
	if err != nil {
		return "", fmt.Errorf("invalid repository URL %q: %w", repo, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid repository URL %q: scheme must be http or https", repo)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid repository URL %q: missing host", repo)
	}
	if !strings.HasSuffix(u.Path, ".tar.gz") {
		u.Path = path.Join("/", u.Path, ArchiveName)
	}
	return u.String(), nil
}

// FetchIndex downloads the index archive of repo and returns the APKINDEX
// text. The compressed archive is what gets cached.
//
// Returns:
//   - [integrations.ErrNotFound] if the archive doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures
//   - [ErrNoIndex] or a decompression error for a corrupt archive
func (c *Client) FetchIndex(ctx context.Context, repo string, refresh bool) ([]byte, error) {
	u, err := IndexURL(repo)
	if err != nil {
		return nil, err
	}
	archive, err := c.Fetch(ctx, u, refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	text, err := ExtractIndex(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u, err)
	}
	return text, nil
}

// ExtractIndex reads a gzip-compressed tar stream and returns the contents
// of its APKINDEX member. Concatenated gzip members are read as one stream.
func ExtractIndex(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoIndex
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == MemberName {
			return io.ReadAll(tr)
		}
	}
}
