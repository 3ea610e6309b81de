package assets

import (
	"encoding/binary"
	"sort"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
)

// compilationHash fingerprints the whole build output so every page reference
// changes when any output changes.
func compilationHash(files []api.OutputFile, metafile []byte) string {
	sorted := make([]api.OutputFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := crc64nvme.New()
	for _, file := range sorted {
		h.Write(file.Contents)
	}
	h.Write(metafile)

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return base58.Encode(sum[:])
}
