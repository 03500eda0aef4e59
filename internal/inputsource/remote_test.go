package inputsource

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"docforge/internal/objectstore"
)

func TestRemoteSourceListsAllObjects(t *testing.T) {
	store := objectstore.NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Put(ctx, "inbox/a.pdf", bytes.NewReader([]byte("a")), objectstore.PutOptions{}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if _, err := store.Put(ctx, "inbox/b.pdf", bytes.NewReader([]byte("b")), objectstore.PutOptions{}); err != nil {
		t.Fatalf("put b: %v", err)
	}

	src := NewRemote(store, "inbox/")
	out, errc := src.List(ctx)

	var names []string
	for doc := range out {
		names = append(names, doc.Name)
	}
	if err := <-errc; err != nil {
		t.Fatalf("List error: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "inbox/a.pdf" || names[1] != "inbox/b.pdf" {
		t.Fatalf("names = %v", names)
	}
}
