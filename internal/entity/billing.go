package entity

type BillingDetails struct {
	ID       int    `json:"id"`
	UserID   *int   `json:"user_id,omitempty"`
	Phone    string `json:"phone_number"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
}
