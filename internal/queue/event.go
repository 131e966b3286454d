// Package queue defines message payloads exchanged over the message broker.
package queue

// ReviewPostedEvent is published when a review is successfully created.  It
// contains enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type ReviewPostedEvent struct {
	ReviewID  uint64 `json:"review_id"`
	InvID     uint64 `json:"inv_id"`
	AccountID uint64 `json:"account_id"`
	Rating    int    `json:"review_rating"`
	Vehicle   string `json:"vehicle"` // "<make> <model>" for human-readable logs
	PostedAt  string `json:"posted_at"`
}
