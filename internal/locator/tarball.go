package locator

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/schollz/progressbar/v3"
)

// tarball downloads a gzipped source archive and unpacks it into Dest.
type tarball struct {
	URL      string
	Dest     string
	Client   *http.Client
	Progress io.Writer
}

// Fetch downloads the archive to a temp file, unpacks it next to Dest with
// the top-level directory stripped, then swaps it into place.
func (t *tarball) Fetch(ctx context.Context) error {
	parent := filepath.Dir(t.Dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	archive, err := t.download(ctx, parent)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	staging, err := os.MkdirTemp(parent, ".tarball-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extract(archive, staging); err != nil {
		return err
	}

	if err := os.RemoveAll(t.Dest); err != nil {
		return fmt.Errorf("failed to clear %s: %w", t.Dest, err)
	}
	if err := os.Rename(staging, t.Dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

func (t *tarball) download(ctx context.Context, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d (URL: %s)", resp.StatusCode, t.URL)
	}

	f, err := os.CreateTemp(dir, "zoo-*.tar.gz.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	var w io.Writer = f
	if t.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(t.Progress),
			progressbar.OptionSetDescription("downloading zoo"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		w = io.MultiWriter(f, bar)
	}

	_, err = io.Copy(w, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return f.Name(), nil
}

// extract unpacks a .tar.gz into dir, dropping the first path component of
// every entry. Entries that would land outside dir are rejected.
func extract(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("invalid archive: %w", err)
	}
	defer gz.Close()

	root := filepath.Clean(dir) + string(os.PathSeparator)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid archive: %w", err)
		}

		name := stripTopDir(hdr.Name)
		if name == "" {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// links and devices are not needed for component sources
		}
	}
}

func stripTopDir(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return strings.Trim(name[i+1:], "/")
	}
	return ""
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
