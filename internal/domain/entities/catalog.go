package entities

// Reference data owned by the catalog store. The booking engine only reads it.

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleTechnician Role = "TECHNICIAN"
	RoleAdmin      Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return r, true
	}
	return "", false
}

type Service struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Description             string  `json:"description"`
	Cost                    float64 `json:"cost"`
	AllowCustomerTechChoice bool    `json:"allow_customer_tech_choice"`
}

type Car struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	PlateNo string `json:"plate_no"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Year    string `json:"year"`
}

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    Role   `json:"role"`
	Blocked bool   `json:"blocked"`
}
