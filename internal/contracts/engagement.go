package contracts

import "time"

// EmailDirection mirrors the CRM email direction tag
type EmailDirection string

const (
	EmailOutgoing  EmailDirection = "OUTGOING_EMAIL"
	EmailGeneric   EmailDirection = "EMAIL"
	EmailIncoming  EmailDirection = "INCOMING_EMAIL"
	EmailForwarded EmailDirection = "FORWARDED_EMAIL"
)

// Call is a logged call engagement associated with a deal
type Call struct {
	ID          string    `json:"id"`
	DealID      string    `json:"deal_id"`
	Timestamp   time.Time `json:"timestamp"`
	Direction   string    `json:"direction"`
	Disposition string    `json:"disposition"`
}

// Email is a logged email engagement associated with a deal
type Email struct {
	ID        string         `json:"id"`
	DealID    string         `json:"deal_id"`
	Timestamp time.Time      `json:"timestamp"`
	Direction EmailDirection `json:"direction"`
	FromEmail string         `json:"from_email"`
	Subject   string         `json:"subject"`
}

// Meeting is a booked meeting associated with a deal.
// CreatedAt is when it was booked, StartTime when it takes place.
type Meeting struct {
	ID        string     `json:"id"`
	DealID    string     `json:"deal_id"`
	CreatedAt time.Time  `json:"created_at"`
	StartTime *time.Time `json:"start_time"`
	Title     string     `json:"title"`
}

// Engagements bundles the engagement lists of one deal
type Engagements struct {
	Calls    []Call    `json:"calls"`
	Emails   []Email   `json:"emails"`
	Meetings []Meeting `json:"meetings"`
}
