package models

// Role names.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name" form:"role"`
}

type Profile struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type User struct {
	ID          int      `json:"id"`
	FirebaseUID *string  `json:"firebaseUid,omitempty"`
	Email       string   `json:"email"`
	Password    string   `json:"-"`
	ProfileID   *int     `json:"-"`
	RoleID      int      `json:"-"`
	Profile     *Profile `json:"profile,omitempty"`
	Role        *Role    `json:"role,omitempty"`
	Orders      []Order  `json:"orders,omitempty"`
}

type ProfileInput struct {
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
}

type RoleInput struct {
	Name string `json:"name" form:"role"`
}

type CreateUserRequest struct {
	Email    string        `json:"email" form:"email" binding:"required,email"`
	Password string        `json:"password" form:"password" binding:"required,min=6"`
	Profile  *ProfileInput `json:"profile"`
	Role     *RoleInput    `json:"role"`
}

type UpdateProfileInput struct {
	FirstName *string `json:"firstName" form:"firstName"`
	LastName  *string `json:"lastName" form:"lastName"`
}

type UpdateUserRequest struct {
	Email    *string             `json:"email" form:"email" binding:"omitempty,email"`
	Password *string             `json:"password" form:"password" binding:"omitempty,min=6"`
	Profile  *UpdateProfileInput `json:"profile"`
	Role     *RoleInput          `json:"role"`
}

// NewUser is what the user service persists after the identity account
// exists. PasswordHash is never the plain password.
type NewUser struct {
	Email        string
	PasswordHash string
	FirebaseUID  *string
	RoleID       int
	FirstName    string
	LastName     string
}

// UserChanges is a partial user update. Nil fields are left alone.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	RoleID       *int
	FirstName    *string
	LastName     *string
}
