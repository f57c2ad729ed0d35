package domain

// BootstrapData describes the first super admin.
type BootstrapData struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}
