package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
	issuancesvc "github.com/R3E-Network/library_service/internal/app/services/issuance"
)

// flexString accepts a JSON string or number. Form-driven clients send ids
// either way; the services parse them.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
		return nil
	}
}

// Server-assigned fields are accepted and ignored so clients can send back a
// record they fetched.
type bookPayload struct {
	ID           flexString `json:"book_id"`
	Name         flexString `json:"book_name"`
	CategoryID   flexString `json:"book_cat_id"`
	CollectionID flexString `json:"book_collection_id"`
	LaunchDate   flexString `json:"book_launch_date"`
	Publisher    flexString `json:"book_publisher"`
}

func (p bookPayload) toBook() book.Book {
	return book.Book{
		Name:         string(p.Name),
		CategoryID:   string(p.CategoryID),
		CollectionID: string(p.CollectionID),
		LaunchDate:   string(p.LaunchDate),
		Publisher:    string(p.Publisher),
	}
}

type memberPayload struct {
	ID    flexString `json:"mem_id"`
	Name  flexString `json:"mem_name"`
	Phone flexString `json:"mem_phone"`
	Email flexString `json:"mem_email"`
}

func (p memberPayload) toMember() member.Member {
	return member.Member{
		Name:  string(p.Name),
		Phone: string(p.Phone),
		Email: string(p.Email),
	}
}

type issuancePayload struct {
	ID               flexString `json:"issuance_id"`
	IssuanceDate     flexString `json:"issuance_date"`
	BookID           flexString `json:"book_id"`
	MemberID         flexString `json:"issuance_member"`
	IssuedBy         flexString `json:"issued_by"`
	TargetReturnDate flexString `json:"target_return_date"`
	Status           flexString `json:"issuance_status"`
}

func (p issuancePayload) toRequest() issuancesvc.IssueRequest {
	return issuancesvc.IssueRequest{
		BookID:           string(p.BookID),
		MemberID:         string(p.MemberID),
		IssuedBy:         string(p.IssuedBy),
		TargetReturnDate: string(p.TargetReturnDate),
		Status:           string(p.Status),
	}
}
