package docstore

import (
	"slices"
)

// MaxDocumentSize bounds the encoded size of a document (keys plus data).
const MaxDocumentSize = 4096

// Document is a stored value together with its key.
type Document[T any] struct {
	CompositeKey `msgpack:"k" json:"key"`
	Data         T `msgpack:"d" json:"data"`
}

// Key returns the document's composite key.
func (doc *Document[T]) Key() CompositeKey {
	return doc.CompositeKey
}

// QueryResponse is one page of query results. Pages are numbered from 1.
type QueryResponse[T any] struct {
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	Results    []*Document[T] `json:"results"`
}

// indexBucket lists the keys of documents sharing one secondary key. A key
// appears in at most one bucket; empty buckets are deleted, never stored.
type indexBucket struct {
	Keys []CompositeKey `msgpack:"k"`
}

func (b *indexBucket) contains(key CompositeKey) bool {
	return slices.ContainsFunc(b.Keys, key.Equal)
}

func (b *indexBucket) add(key CompositeKey) bool {
	if b.contains(key) {
		return false
	}
	b.Keys = append(b.Keys, key)
	return true
}

func (b *indexBucket) remove(key CompositeKey) bool {
	n := len(b.Keys)
	b.Keys = slices.DeleteFunc(b.Keys, key.Equal)
	return len(b.Keys) != n
}

func encodeDocument[T any](doc *Document[T], enc EncodingMethod) ([]byte, error) {
	data, err := enc.encode(nil, doc)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, ErrEncodingTooLarge
	}
	return appendValue(nil, flagsFor(enc), data), nil
}

func decodeDocument[T any](raw []byte) (*Document[T], error) {
	var vle value
	if err := vle.decode(raw); err != nil {
		return nil, err
	}
	doc := new(Document[T])
	if err := vle.Flags.encoding().decode(vle.Data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func encodeIndexBucket(b *indexBucket) []byte {
	data := must(MsgPack.encode(nil, b))
	return appendValue(nil, vfDefault, data)
}

func decodeIndexBucket(raw []byte) (*indexBucket, error) {
	var vle value
	if err := vle.decode(raw); err != nil {
		return nil, err
	}
	b := new(indexBucket)
	if err := vle.Flags.encoding().decode(vle.Data, b); err != nil {
		return nil, err
	}
	return b, nil
}
