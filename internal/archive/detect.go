package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Kind identifies the container format of an archive.
type Kind int

const (
	KindUnknown Kind = iota
	KindZip
	KindSevenZip
)

var (
	zipLocalHeader   = []byte("PK\x03\x04")
	zipEmptyArchive  = []byte("PK\x05\x06")
	zipSpannedMarker = []byte("PK\x07\x08")
	sevenZipMagic    = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
)

// signatureLen is the number of leading bytes needed to classify any supported kind.
const signatureLen = 6

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindSevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// Extension returns the file extension extraction tooling expects for the kind,
// or "" for KindUnknown.
func (k Kind) Extension() string {
	switch k {
	case KindZip:
		return ".zip"
	case KindSevenZip:
		return ".7z"
	default:
		return ""
	}
}

// Sniff classifies a container from its leading bytes. ZIP is checked before 7z.
func Sniff(header []byte) Kind {
	switch {
	case bytes.HasPrefix(header, zipLocalHeader),
		bytes.HasPrefix(header, zipEmptyArchive),
		bytes.HasPrefix(header, zipSpannedMarker):
		return KindZip
	case bytes.HasPrefix(header, sevenZipMagic):
		return KindSevenZip
	default:
		return KindUnknown
	}
}

// Detect reads the signature of the file at path. Files too short to carry a
// signature are KindUnknown; the error is reserved for I/O failures.
func Detect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return KindUnknown, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		return KindUnknown, fmt.Errorf("archive %s is a directory", path)
	}

	header := make([]byte, signatureLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, fmt.Errorf("read archive signature: %w", err)
	}
	return Sniff(header[:n]), nil
}
