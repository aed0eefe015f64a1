// Package audit implements the asynchronous audit event dispatcher used by
// the engine. Buffered, bounded, and drop-counting: the request path never
// blocks on a slow sink.
package audit
