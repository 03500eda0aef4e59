package inputsource

import (
	"context"
	"fmt"

	"docforge/internal/objectstore"
)

// remoteSource enumerates documents stored in an object store (S3 or
// S3-compatible), grounded on internal/objectstore's List/Get operations.
type remoteSource struct {
	store  objectstore.ObjectStore
	prefix string
}

// NewRemote builds an InputSource backed by an object store bucket.
func NewRemote(store objectstore.ObjectStore, prefix string) InputSource {
	return &remoteSource{store: store, prefix: prefix}
}

func (s *remoteSource) List(ctx context.Context) (<-chan Document, <-chan error) {
	out := make(chan Document)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		opts := objectstore.ListOptions{Prefix: s.prefix}
		for {
			res, err := s.store.List(ctx, opts)
			if err != nil {
				errc <- fmt.Errorf("list objects under %q: %w", s.prefix, err)
				return
			}
			for _, attrs := range res.Objects {
				if attrs.IsPrefix {
					continue
				}
				rc, _, getErr := s.store.Get(ctx, attrs.Key)
				if getErr != nil {
					errc <- fmt.Errorf("get %s: %w", attrs.Key, getErr)
					return
				}
				data, readErr := readAllAndClose(rc)
				if readErr != nil {
					errc <- fmt.Errorf("read %s: %w", attrs.Key, readErr)
					return
				}
				doc := Document{Name: attrs.Key, Bytes: data, OriginURL: "s3://" + attrs.Key}
				select {
				case out <- doc:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if !res.IsTruncated {
				return
			}
			opts.ContinuationToken = res.NextContinuationToken
		}
	}()

	return out, errc
}

// Ping delegates to the backing object store.
func (s *remoteSource) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
