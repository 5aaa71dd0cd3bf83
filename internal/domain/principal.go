package domain

import "time"

// Role identifies which principal store a token or session belongs to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleMerchant
}

// Principal is the closed set of entities that can authenticate. The two
// implementations are Customer and Merchant; the role is derived from the
// variant, never stored as a free-form field.
type Principal interface {
	PrincipalID() string
	Email() string
	DisplayName() string
	Secret() Secret
	Role() Role

	sealed()
}

type Customer struct {
	ID           string
	Name         string
	EmailAddr    string
	StoredSecret Secret
	Phone        string
	City         string
	Address      string
	Photo        string
	CreatedAt    time.Time
}

func (c Customer) PrincipalID() string { return c.ID }
func (c Customer) Email() string       { return c.EmailAddr }
func (c Customer) DisplayName() string { return c.Name }
func (c Customer) Secret() Secret      { return c.StoredSecret }
func (c Customer) Role() Role          { return RoleCustomer }
func (c Customer) sealed()             {}

type Merchant struct {
	ID           string
	Name         string
	EmailAddr    string
	StoredSecret Secret
	Address      string
	Phone        string
	Description  string
	Photos       string
	CreatedAt    time.Time
}

func (m Merchant) PrincipalID() string { return m.ID }
func (m Merchant) Email() string       { return m.EmailAddr }
func (m Merchant) DisplayName() string { return m.Name }
func (m Merchant) Secret() Secret      { return m.StoredSecret }
func (m Merchant) Role() Role          { return RoleMerchant }
func (m Merchant) sealed()             {}
