package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
)

// QueryLogRepository implements storage.QueryLogRepository for BadgerDB.
// The log is append-only; records get sequence IDs and are never rewritten.
type QueryLogRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.QueryLogRepository = (*QueryLogRepository)(nil)

// NewQueryLogRepository creates a new QueryLogRepository.
func NewQueryLogRepository(backend *Backend) (*QueryLogRepository, error) {
	idSeq, err := backend.GetSequence(queryLogIDSeq)
	if err != nil {
		return nil, err
	}
	return &QueryLogRepository{backend: backend, idSeq: idSeq}, nil
}

// Close releases the ID sequence.
func (r *QueryLogRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *QueryLogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendQuery appends one audit record, assigning its sequence ID and
// CreatedAt timestamp.
func (r *QueryLogRepository) AppendQuery(ctx context.Context, query *core.SearchQuery) (*core.SearchQuery, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		query.Id = core.ID(nextID)
		query.CreatedAt = time.Now().UTC()

		if err := tx.Set(makeQueryLogKey(query.Id), storage.MarshalSearchQuery(query)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return query, err
}

// RecentQueries retrieves up to limit audit records, newest first.
func (r *QueryLogRepository) RecentQueries(ctx context.Context, limit int) ([]*core.SearchQuery, error) {
	if limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SearchQuery
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(queryLogPrefix + ":")
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration must seek past the whole prefix range.
		seek := append([]byte(queryLogPrefix+":"), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for iter.Seek(seek); iter.Valid() && len(results) < limit; iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				query, err := storage.UnmarshalSearchQuery(val)
				if err != nil {
					return err
				}
				results = append(results, query)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}
