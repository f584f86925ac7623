package sbml

import (
	"bytes"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint hashes the canonical encoding of a document, giving a cheap
// content identity for diagnostics and idempotence checks.
func Fingerprint(doc *Document) (uint64, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return 0, err
	}
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(buf.Bytes())
	return hash.Sum64(), err
}
