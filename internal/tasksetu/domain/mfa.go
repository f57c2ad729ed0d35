package domain

// MFAEnrollment is handed to the user once, at enrollment.
type MFAEnrollment struct {
	Secret          string // base32
	ProvisioningURI string // otpauth:// URL for QR codes
	Issuer          string
	Account         string
}
