// Package pipeline runs a batch of uploaded files through extraction and
// aggregates the results into one text.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Section is one file's contribution to the aggregated text.
type Section struct {
	Name string
	Text string
}

// SeparatorHeader identifies the file whose text follows it.
func SeparatorHeader(name string) string {
	return "\n--- Content of " + name + " ---"
}

// Aggregate concatenates sections in the given order, each as its separator
// header, a newline and the extracted text.
func Aggregate(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(SeparatorHeader(s.Name))
		sb.WriteString("\n")
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Fingerprint hashes the ordered (name, content hash) pairs of a batch. Two
// batches share a fingerprint only if they hold the same files in the same
// order.
func Fingerprint(files []FileDigest) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write([]byte(f.SHA256))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FileDigest names one file of a batch by content.
type FileDigest struct {
	Name   string
	SHA256 string
}

// Digest returns the hex sha256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
