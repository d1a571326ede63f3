package model

import "time"

// Gig represents a single freelance/job posting.  It is the only entity
// in the system: a flat record with no references to other documents.
// Gigs are created once and never updated or deleted.
//
// Fields:
//
//	ID           – opaque identifier assigned by the store at insert.
//	Title        – short headline of the gig.
//	Price        – price as free text ("50", "$20/h", ...), never parsed.
//	Description  – free text body.
//	ContactPhone – phone number of the poster.
//	ContactEmail – email of the poster.
//	ContactName  – name of the poster.
//	Location     – where the work happens; matched by exact equality.
//	Category     – kind of work; matched by exact equality.
//	CreatedAt    – insertion timestamp, set by the store layer.
type Gig struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Price        string    `bson:"price" json:"price"`
	Description  string    `bson:"description" json:"description"`
	ContactPhone string    `bson:"contact_phone" json:"contactPhone"`
	ContactEmail string    `bson:"contact_email" json:"contactEmail"`
	ContactName  string    `bson:"contact_name" json:"contactName"`
	Location     string    `bson:"location" json:"location"`
	Category     string    `bson:"category" json:"category"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// NewGig carries the arguments of the createGig operation.  Every field is
// required; presence is checked by the handler layer before the service is
// invoked.
type NewGig struct {
	Title        string `json:"title"`
	Price        string `json:"price"`
	Description  string `json:"description"`
	ContactPhone string `json:"contactPhone"`
	ContactEmail string `json:"contactEmail"`
	ContactName  string `json:"contactName"`
	Location     string `json:"location"`
	Category     string `json:"category"`
}

// Page selects a window of a result set: skip Offset records and return
// at most Limit of the remainder.
type Page struct {
	Limit  int64
	Offset int64
}
