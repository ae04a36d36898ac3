package domain

// Product is an item of the protected catalog.
type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
