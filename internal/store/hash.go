package store

import (
	"crypto/sha256"
	"fmt"
)

// ComputeSnippetHash computes a deterministic hash of a region's identity
// and rendered text. The root does not affect the hash.
func ComputeSnippetHash(path, region, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "path:%s\n", path)
	fmt.Fprintf(h, "region:%s\n", region)
	fmt.Fprintf(h, "text:%s\n", text)
	return fmt.Sprintf("%x", h.Sum(nil))
}
