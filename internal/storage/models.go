package storage

import "time"

// TenantRecord represents a tenant row in the database.
// The collection column names the tenant's vector namespace.
type TenantRecord struct {
	ID         int64
	Name       string
	Collection string
	CreatedAt  time.Time
}

// SegmentRecord represents a stored text segment owned by one tenant.
// The ID doubles as the vector point ID in the tenant's namespace.
type SegmentRecord struct {
	ID       string // UUID (same as vector point ID)
	TenantID int64
	Source   string // source document identifier (e.g. "Q1.pdf")
	Page     int    // page/location within the source
	Seq      int    // sequence index within the source
	Text     string
}

// ConversationRecord represents one logged question/answer exchange.
// Citations holds the JSON-encoded citation list as emitted to the caller.
type ConversationRecord struct {
	ID         string // UUID
	TenantID   int64
	Question   string
	Answer     string
	Confidence float64
	Citations  string
	CreatedAt  time.Time
}
