package sbml

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
)

// ReadDocument loads and decodes an SBML document from any afs-supported URL
// (file, http, s3, ...).
func ReadDocument(ctx context.Context, fs afs.Service, url string) (*Document, error) {
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return doc, nil
}

// WriteDocument encodes and uploads an SBML document to an afs-supported URL.
func WriteDocument(ctx context.Context, fs afs.Service, url string, doc *Document) error {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return fmt.Errorf("write %s: %w", url, err)
	}
	if err := fs.Upload(ctx, url, 0644, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("write %s: %w", url, err)
	}
	return nil
}
