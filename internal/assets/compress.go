package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// compressible output types that static servers negotiate gzip for
var compressible = []string{".js", ".css", ".html", ".svg", ".json"}

// compressFiles writes a .gz sibling next to each compressible output file and
// returns the new files relative to dir.
func compressFiles(dir string, files []string) ([]string, error) {
	var written []string

	for _, file := range files {
		if !isCompressible(file) {
			continue
		}

		if err := gzipFile(filepath.Join(dir, filepath.FromSlash(file))); err != nil {
			return nil, fmt.Errorf("failed to compress %s: %w", file, err)
		}
		written = append(written, file+".gz")
	}

	log.Debug().Int("files", len(written)).Msg("Compressed outputs")
	return written, nil
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	archivePath := path + ".gz"
	dst, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer dst.Close()

	enc, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		return err
	}

	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		os.Remove(archivePath)
		return err
	}

	if err := enc.Close(); err != nil {
		os.Remove(archivePath)
		return err
	}

	return dst.Close()
}

func isCompressible(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, candidate := range compressible {
		if ext == candidate {
			return true
		}
	}
	return false
}
