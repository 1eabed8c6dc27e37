package model

type Event struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EventDate   Timestamp `json:"eventDate"`
	Price       float64   `json:"price"`
	Venue       string    `json:"venue"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"imageUrl"`
}

// Page is the service's pagination envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
