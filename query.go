package docstore

import (
	"fmt"
	"slices"
)

// Query selects documents by partition, by secondary key, or by both, and
// asks for one page of the result. Pages are numbered from 1.
type Query[S any] struct {
	Partition    string
	HasPartition bool
	Secondary    S
	HasSecondary bool
	PageSize     int
	PageNumber   int
	Descending   bool
}

func (q Query[S]) InPartition(partitionKey string) Query[S] {
	q.Partition, q.HasPartition = partitionKey, true
	return q
}

func (q Query[S]) WithSecondaryKey(k S) Query[S] {
	q.Secondary, q.HasSecondary = k, true
	return q
}

func (q Query[S]) Page(size, number int) Query[S] {
	q.PageSize, q.PageNumber = size, number
	return q
}

// Reversed makes the query return matches last to first. Pages are cut from
// the reversed sequence.
func (q Query[S]) Reversed() Query[S] {
	q.Descending = true
	return q
}

func (q *Query[S]) validate() error {
	if q.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrBadRequest, q.PageSize)
	}
	if q.PageNumber <= 0 {
		return fmt.Errorf("%w: page number must be at least 1, got %d", ErrBadRequest, q.PageNumber)
	}
	if !q.HasPartition && !q.HasSecondary {
		return fmt.Errorf("%w: partition key or secondary key required", ErrBadRequest)
	}
	return nil
}

// Query returns one page of the documents matched by q.
//
// A partition selector matches every document of the partition in key order.
// A secondary selector matches the documents listed under that key, in the
// order they were indexed; index entries whose document no longer exists are
// skipped. With both selectors, the secondary matches are narrowed to the
// partition.
//
// Errors match ErrNoMatch when the partition is empty, when the secondary
// key has no index entry, or when no indexed document is in the requested
// partition. ErrPageOutOfRange means the page starts past the last match,
// which includes an index entry whose documents are all gone.
func (d *Database[T, S]) Query(q Query[S]) (*QueryResponse[T], error) {
	if err := q.validate(); err != nil {
		return nil, d.finish(opQuery, nil, err)
	}
	if q.HasSecondary && !d.HasSecondaryIndex() {
		return nil, d.finish(opQuery, nil, ErrSecondaryIndexUnavailable)
	}

	d.coll.cell.borrow()
	defer d.coll.cell.release()

	var resp *QueryResponse[T]
	err := d.db.read(func(tx *tx) error {
		var matched [][]byte
		var err error
		if q.HasSecondary {
			var found bool
			matched, found, err = d.selectBySecondary(tx, &q)
			if err != nil {
				return err
			}
			if !found || (q.HasPartition && len(matched) == 0) {
				return ErrNoMatch
			}
			if q.Descending {
				slices.Reverse(matched)
			}
		} else {
			matched = d.selectPartition(tx, q.Partition, q.Descending)
			if len(matched) == 0 {
				return ErrNoMatch
			}
		}
		resp, err = paginate[T](matched, q.PageSize, q.PageNumber)
		return err
	})
	if err != nil {
		return nil, d.finish(opQuery, nil, err)
	}
	return resp, d.finish(opQuery, nil, nil)
}

// QueryPartition is Query with only a partition selector.
func (d *Database[T, S]) QueryPartition(partitionKey string, pageSize, pageNumber int) (*QueryResponse[T], error) {
	return d.Query(Query[S]{}.InPartition(partitionKey).Page(pageSize, pageNumber))
}

// QuerySecondary is Query with only a secondary key selector.
func (d *Database[T, S]) QuerySecondary(k S, pageSize, pageNumber int) (*QueryResponse[T], error) {
	return d.Query(Query[S]{}.WithSecondaryKey(k).Page(pageSize, pageNumber))
}

// selectPartition returns the raw values of the documents whose keys lie in
// [{partitionKey, absent}, {partitionKey, MaxSortKey}].
func (d *Database[T, S]) selectPartition(tx *tx, partitionKey string, reverse bool) [][]byte {
	prim := tx.region(d.coll.primary)
	if prim == nil {
		return nil
	}
	var matched [][]byte
	rang := partitionRange(partitionKey)
	rang.Reverse = reverse
	c := rang.newCursor(prim.Cursor())
	for c.Next() {
		matched = append(matched, c.Value())
	}
	return matched
}

// selectBySecondary resolves the index entry of q.Secondary. found is false
// when the key has no index entry at all.
func (d *Database[T, S]) selectBySecondary(tx *tx, q *Query[S]) (matched [][]byte, found bool, err error) {
	sec := tx.region(d.coll.secondary)
	if sec == nil {
		return nil, false, nil
	}
	raw := sec.Get(d.idx.Codec.EncodeKey(nil, q.Secondary))
	if raw == nil {
		return nil, false, nil
	}
	b, err := decodeIndexBucket(raw)
	if err != nil {
		return nil, true, err
	}

	prim := tx.region(d.coll.primary)
	var dangling int
	for _, key := range b.Keys {
		if q.HasPartition && key.PartitionKey != q.Partition {
			continue
		}
		var v []byte
		if prim != nil {
			v = prim.Get(key.encode(nil))
		}
		if v == nil {
			dangling++
			d.db.debugf("docstore: %s: index entry %v has no document, skipped", d.coll.name, key)
			continue
		}
		matched = append(matched, v)
	}
	d.db.metrics.dangling(d.coll.name, dangling)
	return matched, true, nil
}

// paginate decodes the requested page of matched values. An empty matched
// has no pages.
func paginate[T any](matched [][]byte, pageSize, pageNumber int) (*QueryResponse[T], error) {
	total := len(matched)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if pageNumber > totalPages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageNumber, totalPages)
	}
	start := (pageNumber - 1) * pageSize
	end := min(start+pageSize, total)

	resp := &QueryResponse[T]{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		Results:    make([]*Document[T], 0, end-start),
	}
	for _, raw := range matched[start:end] {
		doc, err := decodeDocument[T](raw)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, doc)
	}
	return resp, nil
}
