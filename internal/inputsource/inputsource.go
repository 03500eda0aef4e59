// Package inputsource implements C3, the input-enumeration capability: list
// source documents as (name, bytes, originURL) regardless of whether they
// live on local disk or in a remote object store.
package inputsource

import "context"

// Document is one source document as enumerated by an InputSource.
type Document struct {
	Name      string
	Bytes     []byte
	OriginURL string // file://… (local), s3://<key> (object store), or http(s)://…
}

// InputSource enumerates the documents a pipeline run should process.
type InputSource interface {
	// List streams every document found under the configured root. The
	// channel is closed when enumeration completes or ctx is cancelled.
	List(ctx context.Context) (<-chan Document, <-chan error)

	// Ping verifies the source's root (directory or bucket) is reachable,
	// used by the validate-only probe.
	Ping(ctx context.Context) error
}
