package model

type Profile struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	Age       int       `json:"age"`
	BirthDate Timestamp `json:"birthDate"`
	PhotoURL  string    `json:"photoUrl"`
}

// User is the admin-surface view of an account.
type User struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	Enabled  bool   `json:"enabled"`
}
