package entity

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type UserProfile struct {
	ID      int    `json:"id"`
	UserID  int    `json:"user_id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
