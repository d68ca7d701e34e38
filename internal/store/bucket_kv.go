package store

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
)

// bucketKV keeps cloud mirror items as objects named
// {prefix}/{uid}/{key}.json in a Cloud Storage bucket.
type bucketKV struct {
	bucket *storage.BucketHandle
	prefix string
}

func NewBucketKV(client *storage.Client, bucket, prefix string) *bucketKV {
	return &bucketKV{bucket: client.Bucket(bucket), prefix: prefix}
}

// objectName keeps every object under the user's own prefix.
func (s *bucketKV) objectName(uid, key string) (string, error) {
	for _, part := range []string{uid, key} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", errs.NewValidationError("invalid cloud item path segment " + `"` + part + `"`)
		}
	}
	return path.Join(s.prefix, uid, key+".json"), nil
}

func (s *bucketKV) object(uid, key string) (*storage.ObjectHandle, error) {
	name, err := s.objectName(uid, key)
	if err != nil {
		return nil, err
	}
	return s.bucket.Object(name), nil
}

func (s *bucketKV) SetItem(ctx context.Context, uid, key, value string) error {
	obj, err := s.object(uid, key)
	if err != nil {
		return err
	}
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.WriteString(w, value); err != nil {
		_ = w.Close()
		return errs.NewDatabaseError("write", "failed to write "+key, err)
	}
	if err := w.Close(); err != nil {
		return errs.NewDatabaseError("write", "failed to write "+key, err)
	}
	return nil
}

func (s *bucketKV) GetItem(ctx context.Context, uid, key string) (string, error) {
	obj, err := s.object(uid, key)
	if err != nil {
		return "", err
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", nil
		}
		return "", errs.NewDatabaseError("read", "failed to open "+key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errs.NewDatabaseError("read", "failed to read "+key, err)
	}
	return string(data), nil
}

func (s *bucketKV) GetItems(ctx context.Context, uid string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := s.GetItem(ctx, uid, k)
		if err != nil {
			return nil, err
		}
		if v != "" {
			out[k] = v
		}
	}
	return out, nil
}

func (s *bucketKV) RemoveItems(ctx context.Context, uid string, keys []string) error {
	for _, k := range keys {
		obj, err := s.object(uid, k)
		if err != nil {
			return err
		}
		if err := obj.Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return errs.NewDatabaseError("delete", "failed to delete "+k, err)
		}
	}
	return nil
}
