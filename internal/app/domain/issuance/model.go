package issuance

import "time"

// Status is the lifecycle state of an issuance.
type Status string

const (
	StatusIssued   Status = "Issued"
	StatusReturned Status = "Returned"
	StatusOverdue  Status = "Overdue"
)

// Valid reports whether s is one of the known statuses. Matching is exact.
func (s Status) Valid() bool {
	switch s {
	case StatusIssued, StatusReturned, StatusOverdue:
		return true
	}
	return false
}

// Issuance records a book lent to a member.
type Issuance struct {
	ID               int64     `json:"issuance_id" db:"issuance_id"`
	BookID           int64     `json:"book_id" db:"book_id"`
	MemberID         int64     `json:"issuance_member" db:"issuance_member"`
	IssuedBy         string    `json:"issued_by" db:"issued_by"`
	IssuedAt         time.Time `json:"issuance_date" db:"issuance_date"`
	TargetReturnDate string    `json:"target_return_date" db:"target_return_date"`
	Status           Status    `json:"issuance_status" db:"issuance_status"`
}

// PendingReturn is an Issued row due on or before a queried date, joined
// with display names.
type PendingReturn struct {
	IssuanceID       int64  `json:"issuance_id" db:"issuance_id"`
	MemberName       string `json:"mem_name" db:"mem_name"`
	BookName         string `json:"book_name" db:"book_name"`
	TargetReturnDate string `json:"target_return_date" db:"target_return_date"`
}
