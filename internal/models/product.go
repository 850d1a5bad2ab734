package models

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients,omitempty"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
}

// ProductInput carries the client-editable fields for create and update;
// the id is always server-assigned.
type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients,omitempty"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
}
