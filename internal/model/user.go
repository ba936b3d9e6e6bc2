package model

// User is an account on the exam platform.
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Niveau          string `json:"niveau,omitempty"`
	Filiere         string `json:"filiere,omitempty"`
	IsStaff         bool   `json:"is_staff,omitempty"`
	DateJoined      string `json:"date_joined,omitempty"`
	DateInscription string `json:"date_inscription,omitempty"`
}

// LoginCredentials is the body of the token endpoint.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserType distinguishes students from teachers at registration.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)

// RegisterInput is the body of the registration endpoint.
type RegisterInput struct {
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  UserType `json:"user_type"`
}

// AuthResult is what a successful login yields.
type AuthResult struct {
	Credentials
	User User `json:"user"`
}
