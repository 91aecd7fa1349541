package identity

// User is an authentication record keyed by email. The ID doubles as the
// customer profile id for customer principals.
type User struct {
	ID           string `dynamodbav:"id" json:"id"`
	Email        string `dynamodbav:"email" json:"email"`
	Name         string `dynamodbav:"name" json:"name"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

// Role labels a principal kind. There is no role attribute on the user
// record: admin status is the existence of a marker document, and absence of
// the marker means customer.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)
