package domain

// Profile updates carry the mutable columns only. The secret is changed
// through the dedicated password path, never here.

type CustomerProfileUpdate struct {
	Name  string
	Email string
	Phone string
	City  string
}

type MerchantProfileUpdate struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	Description string
}
