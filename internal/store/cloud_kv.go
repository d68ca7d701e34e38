package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// firestoreKV keeps cloud mirror items at users/{uid}/cloud_storage/{key}.
type firestoreKV struct {
	client *firestore.Client
}

func NewFirestoreKV(client *firestore.Client) *firestoreKV {
	return &firestoreKV{client: client}
}

type kvItem struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (s *firestoreKV) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("cloud_storage")
}

func (s *firestoreKV) SetItem(ctx context.Context, uid, key, value string) error {
	_, err := s.collection(uid).Doc(key).Set(ctx, kvItem{Value: value, UpdatedAt: time.Now()})
	if err != nil {
		return errs.NewDatabaseError("write", "failed to store "+key, err)
	}
	return nil
}

func (s *firestoreKV) GetItem(ctx context.Context, uid, key string) (string, error) {
	items, err := s.GetItems(ctx, uid, []string{key})
	if err != nil {
		return "", err
	}
	return items[key], nil
}

func (s *firestoreKV) GetItems(ctx context.Context, uid string, keys []string) (map[string]string, error) {
	coll := s.collection(uid)
	refs := make([]*firestore.DocumentRef, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, coll.Doc(k))
	}

	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to read cloud items", err)
	}

	out := make(map[string]string, len(docs))
	for _, d := range docs {
		if !d.Exists() {
			continue
		}
		var item kvItem
		if err := d.DataTo(&item); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse cloud item", err)
		}
		out[d.Ref.ID] = item.Value
	}
	return out, nil
}

func (s *firestoreKV) RemoveItems(ctx context.Context, uid string, keys []string) error {
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	coll := s.collection(uid)

	jobs := make(map[string]*firestore.BulkWriterJob, len(keys))
	for _, k := range keys {
		j, err := bw.Delete(coll.Doc(k))
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("delete", "failed to schedule cloud item delete", err)
		}
		jobs[k] = j
	}
	bw.End()

	for key, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Error("failed to delete cloud item", "key", key, "error", err)
			return errs.NewDatabaseError("delete", "failed to delete cloud item", err)
		}
	}
	return nil
}
