package models

// User is the authenticated console operator
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may manage the agenda
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
