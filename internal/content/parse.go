package content

import "os"

// Document is a parsed file: metadata, body and permission bits.
type Document struct {
	Metadata Metadata
	Body     []byte
	Mode     os.FileMode
	Text     bool
}

// DefaultSplit is the SplitFunc used when none is configured.
var DefaultSplit SplitFunc = Split

// Parse classifies blob as text or binary. Text is split with split, or
// with DefaultSplit when split is nil; binary content becomes the body unchanged
// with empty metadata. mode is attached as given.
func Parse(blob []byte, mode os.FileMode, split SplitFunc) (Document, error) {
	if !IsText(blob) {
		return Document{Metadata: Metadata{}, Body: blob, Mode: mode}, nil
	}

	if split == nil {
		split = DefaultSplit
	}
	fm, err := split(string(blob))
	if err != nil {
		return Document{}, err
	}

	meta := fm.Data
	if meta == nil {
		meta = Metadata{}
	}
	return Document{Metadata: meta, Body: []byte(fm.Body), Mode: mode, Text: true}, nil
}
