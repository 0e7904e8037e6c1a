package store

import "context"

// Op is a single pending write used by chunked bulk mutations.
// A nil Data means delete.
type Op struct {
	Collection string
	ID         string
	Data       map[string]interface{}
}

func SetOp(collection, id string, data map[string]interface{}) Op {
	return Op{Collection: collection, ID: id, Data: data}
}

func DeleteOp(collection, id string) Op {
	return Op{Collection: collection, ID: id}
}

// CommitChunked applies ops in batches of at most limit writes each,
// respecting the backend's per-transaction item cap. Each chunk commits
// as one unit; a failed chunk aborts the remainder but previously
// committed chunks are not rolled back. Returns the number of ops that
// reached a committed chunk.
func CommitChunked(ctx context.Context, s Store, ops []Op, limit int) (int, error) {
	if limit <= 0 {
		limit = 400
	}

	committed := 0
	for start := 0; start < len(ops); start += limit {
		end := start + limit
		if end > len(ops) {
			end = len(ops)
		}

		batch := s.Batch()
		for _, op := range ops[start:end] {
			if op.Data == nil {
				batch.Delete(op.Collection, op.ID)
			} else {
				batch.Set(op.Collection, op.ID, op.Data)
			}
		}
		if err := batch.Commit(ctx); err != nil {
			return committed, err
		}
		committed += end - start
	}
	return committed, nil
}
