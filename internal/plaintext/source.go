// Package plaintext loads the initial text box content from a file, stdin or
// URL and flattens markdown into text that reads well aloud.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// maxSize bounds how much text a source may provide.
const maxSize = 1 << 20

var markdownExtensions = []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"}

// Source is readable text along with where it came from.
type Source struct {
	reader io.ReadCloser
	Name   string // absolute path or URL; empty for stdin
}

// Open resolves arg to a source: "-" is stdin, http(s) URLs are fetched,
// anything else is a file path. The caller closes the source.
func Open(ctx context.Context, arg string) (*Source, error) {
	if arg == "-" {
		return &Source{reader: os.Stdin}, nil
	}

	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("unable to get url: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
		}
		return &Source{reader: resp.Body, Name: u.String()}, nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", arg)
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &Source{reader: f, Name: abs}, nil
}

// Close closes the underlying reader.
func (s *Source) Close() error {
	return s.reader.Close()
}

// Text reads the whole source. Markdown sources, and stdin, are flattened
// to plain text.
func (s *Source) Text() (string, error) {
	b, err := io.ReadAll(io.LimitReader(s.reader, maxSize))
	if err != nil {
		return "", fmt.Errorf("unable to read from reader: %w", err)
	}
	if s.Name == "" || IsMarkdown(s.Name) {
		return FromMarkdown(RemoveFrontmatter(b)), nil
	}
	return strings.TrimSpace(string(b)), nil
}

// Load opens arg and returns its text.
func Load(ctx context.Context, arg string) (string, error) {
	src, err := Open(ctx, arg)
	if err != nil {
		return "", err
	}
	defer src.Close() //nolint:errcheck
	return src.Text()
}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		name = u.Path
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range markdownExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// RemoveFrontmatter strips a leading YAML front matter block.
func RemoveFrontmatter(b []byte) []byte {
	const delim = "---\n"
	if !bytes.HasPrefix(b, []byte(delim)) {
		return b
	}
	end := bytes.Index(b[len(delim):], []byte("\n"+delim))
	if end < 0 {
		return b
	}
	return b[len(delim)+end+len(delim)+1:]
}
