package models

// Session is the signed-in student kept in the local key-value store.
// Either all three fields are persisted or none are.
type Session struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}
