package member

// Member is a library patron.
type Member struct {
	ID    int64  `json:"mem_id" db:"mem_id"`
	Name  string `json:"mem_name" db:"mem_name"`
	Phone string `json:"mem_phone" db:"mem_phone"`
	Email string `json:"mem_email" db:"mem_email"`
}
