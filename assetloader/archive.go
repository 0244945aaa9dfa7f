package assetloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// openEntry opens one archive member for reading.
type openEntry func() (io.ReadCloser, error)

// readEntry reads a matching member and names it by its base name.
func readEntry(name string, open openEntry) ([]byte, string, error) {
	rc, err := open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()

	data, err := limitedRead(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, filepath.Base(name), nil
}

func extractFromZIP(path string, extensions []string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !hasExtension(f.Name, extensions) {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, "", ErrNoAssetFile
}

func extractFrom7z(path string, extensions []string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !hasExtension(f.Name, extensions) {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, "", ErrNoAssetFile
}

func extractFromRAR(path string, extensions []string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil, "", ErrNoAssetFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !hasExtension(header.Name, extensions) {
			continue
		}
		return readEntry(header.Name, func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		})
	}
}

// extractFromGzip handles both single-file .gz and tar.gz/.tgz.
func extractFromGzip(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractFromTar(gr, extensions)
	}

	data, err := limitedRead(gr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress gzip: %w", err)
	}
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return data, name, nil
}

func extractFromTar(r io.Reader, extensions []string) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil, "", ErrNoAssetFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !hasExtension(header.Name, extensions) {
			continue
		}
		return readEntry(header.Name, func() (io.ReadCloser, error) {
			return io.NopCloser(tr), nil
		})
	}
}
