// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// ImageCleanupEvent is published when a book post was deleted but the
// synchronous best-effort delete of its hosted cover image failed.  The
// consumer retries the object deletion so the bucket does not accumulate
// orphans.  Losing one of these events is acceptable; the post itself is
// already gone.
type ImageCleanupEvent struct {
    BookID      uint64 `json:"book_id"`
    ObjectKey   string `json:"object_key"`
    ImageURL    string `json:"image_url"`
    RequestedAt string `json:"requested_at"`
}
