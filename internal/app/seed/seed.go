// Package seed loads a YAML catalogue of books and members into a running
// application through its services, so the same validation applies as for
// API requests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	app "github.com/R3E-Network/library_service/internal/app"
	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
)

// Catalog is the document read by Load.
type Catalog struct {
	Books   []Book   `yaml:"books"`
	Members []Member `yaml:"members"`
}

// Book is one catalogue entry in the seed file.
type Book struct {
	Name         string `yaml:"name"`
	CategoryID   string `yaml:"category_id"`
	CollectionID string `yaml:"collection_id"`
	LaunchDate   string `yaml:"launch_date"`
	Publisher    string `yaml:"publisher"`
}

// Member is one patron in the seed file.
type Member struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

// Result reports what Apply created.
type Result struct {
	Books   []book.Book
	Members []member.Member
}

// Load decodes a catalogue. Unknown keys are rejected.
func Load(r io.Reader) (Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, nil
		}
		return Catalog{}, fmt.Errorf("decode seed file: %w", err)
	}
	return c, nil
}

// Apply creates every book then every member. It stops at the first failure
// and returns what was created so far.
func Apply(ctx context.Context, application *app.Application, c Catalog) (Result, error) {
	var res Result
	for i, b := range c.Books {
		created, err := application.Books.Create(ctx, book.Book{
			Name:         b.Name,
			CategoryID:   b.CategoryID,
			CollectionID: b.CollectionID,
			LaunchDate:   b.LaunchDate,
			Publisher:    b.Publisher,
		})
		if err != nil {
			return res, fmt.Errorf("book %d (%q): %w", i+1, b.Name, err)
		}
		res.Books = append(res.Books, created)
	}
	for i, m := range c.Members {
		created, err := application.Members.Create(ctx, member.Member{
			Name:  m.Name,
			Phone: m.Phone,
			Email: m.Email,
		})
		if err != nil {
			return res, fmt.Errorf("member %d (%q): %w", i+1, m.Name, err)
		}
		res.Members = append(res.Members, created)
	}
	return res, nil
}
