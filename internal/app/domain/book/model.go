package book

// Book is a catalogue entry. Dates use the YYYY-MM-DD wire format.
type Book struct {
	ID           int64  `json:"book_id" db:"book_id"`
	Name         string `json:"book_name" db:"book_name"`
	CategoryID   string `json:"book_cat_id" db:"book_cat_id"`
	CollectionID string `json:"book_collection_id" db:"book_collection_id"`
	LaunchDate   string `json:"book_launch_date" db:"book_launch_date"`
	Publisher    string `json:"book_publisher" db:"book_publisher"`
}
