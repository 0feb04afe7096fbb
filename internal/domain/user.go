package domain

type Role string

func (r Role) String() string {
	return string(r)
}

const (
	RoleAdmin Role = "admin"
	RoleBuyer Role = "buyer"
)

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordReset completes the emailed reset link flow.
type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
