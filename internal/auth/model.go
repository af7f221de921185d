package auth

// User roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF" // venue staff, may scan redemptions
	RoleAdmin    = "ADMIN"
)

// User is the account entity.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}
