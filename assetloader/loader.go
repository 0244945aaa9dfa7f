// Package assetloader reads image and font assets from plain files or from
// the first matching entry of a ZIP, 7z, gzip, tar.gz or RAR archive.
package assetloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// maxAssetSize caps any single extracted asset (32MB).
const maxAssetSize = 32 * 1024 * 1024

// ImageExtensions are the image types the video layer can decode.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// FontExtensions are the outline font types the glyph renderer accepts.
var FontExtensions = []string{".ttf", ".otf"}

// ErrNoAssetFile is returned when an archive holds no entry with a wanted extension
var ErrNoAssetFile = errors.New("no matching asset found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when an asset exceeds maxAssetSize
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Load reads an asset from path. Archives are detected by magic bytes,
// falling back to the file extension, and the first entry whose name ends
// in one of extensions is returned. A plain file must itself carry one of
// extensions.
//
// Returns the asset bytes and its base name.
func Load(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open asset: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read asset header: %w", err)
	}
	header = header[:n]

	switch detectFormat(header, path, extensions) {
	case formatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to seek asset: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read asset: %w", err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return extractFromZIP(path, extensions)
	case format7z:
		return extractFrom7z(path, extensions)
	case formatGzip:
		return extractFromGzip(path, extensions)
	case formatRAR:
		return extractFromRAR(path, extensions)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat prefers magic bytes over the extension of path.
func detectFormat(header []byte, path string, extensions []string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	if hasExtension(lower, extensions) {
		return formatRaw
	}
	return formatUnknown
}

// hasExtension reports whether name ends in one of extensions, ignoring case.
func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAssetSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxAssetSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
