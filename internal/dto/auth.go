package dto

// LoginForm is the URL-encoded body for POST /login.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterForm is the URL-encoded body for POST /register.
type RegisterForm struct {
	Username     string `form:"username"`
	Password     string `form:"password"`
	Confirmation string `form:"confirmation"`
}
