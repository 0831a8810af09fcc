package docstore

import (
	"errors"
)

// Model is a value that knows its own primary key.
type Model interface {
	PrimaryKey() string
}

// Repository stores models in one partition of a collection, keyed by their
// primary key. It trades the partition/sort vocabulary of Database for
// find-by-id semantics: a missing model is not an error.
type Repository[T Model, S any] struct {
	db        *Database[T, S]
	partition string
}

func NewRepository[T Model, S any](db *Database[T, S], partition string) *Repository[T, S] {
	return &Repository[T, S]{db: db, partition: partition}
}

func (r *Repository[T, S]) Database() *Database[T, S] {
	return r.db
}

func (r *Repository[T, S]) key(id string) CompositeKey {
	return SortedKey(r.partition, id)
}

// Save inserts or replaces the model.
func (r *Repository[T, S]) Save(m T) (T, error) {
	doc, err := r.db.Insert(r.key(m.PrimaryKey()), m)
	if err != nil {
		var zero T
		return zero, err
	}
	return doc.Data, nil
}

func (r *Repository[T, S]) FindByID(id string) (T, bool, error) {
	var zero T
	doc, err := r.db.Get(r.key(id))
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	} else if err != nil {
		return zero, false, err
	}
	return doc.Data, true, nil
}

func (r *Repository[T, S]) Exists(id string) (bool, error) {
	return r.db.Exists(r.key(id))
}

// FindAll returns one page of models in primary key order. An empty
// repository yields no models and no error.
func (r *Repository[T, S]) FindAll(pageSize, pageNumber int) ([]T, error) {
	return models(r.db.Query(Query[S]{}.InPartition(r.partition).Page(pageSize, pageNumber)))
}

// FindBySecondaryKey returns one page of the models indexed under k.
func (r *Repository[T, S]) FindBySecondaryKey(k S, pageSize, pageNumber int) ([]T, error) {
	return models(r.db.Query(Query[S]{}.InPartition(r.partition).WithSecondaryKey(k).Page(pageSize, pageNumber)))
}

func models[T any](resp *QueryResponse[T], err error) ([]T, error) {
	if errors.Is(err, ErrNoMatch) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(resp.Results))
	for _, doc := range resp.Results {
		result = append(result, doc.Data)
	}
	return result, nil
}
