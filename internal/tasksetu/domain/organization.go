package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type OrganizationType string

const (
	OrgTypeCompany   OrganizationType = "company"
	OrgTypeTeam      OrganizationType = "team"
	OrgTypeNonprofit OrganizationType = "nonprofit"
	OrgTypeEducation OrganizationType = "education"

	DefaultOrgType = OrgTypeCompany
)

// DefaultLicenseSeats is granted to organizations created by self-service
// registration.
const DefaultLicenseSeats = 10

type OrganizationStatus string

const (
	OrgStatusActive    OrganizationStatus = "active"
	OrgStatusSuspended OrganizationStatus = "suspended"
)

var (
	ErrInvalidSlug      = errors.New("slug must be 3-48 characters of a-z, 0-9 or -")
	ErrInvalidOrgType   = errors.New("unknown organization type")
	ErrInvalidOrgStatus = errors.New("unknown organization status")
	ErrInvalidOrgName   = errors.New("organization name must be 2-120 characters")
	ErrInvalidSeatCount = errors.New("license seats must be between 0 and 100000")
)

const MaxLicenseSeats = 100000

// OrganizationSettings are the per-tenant policy switches.
type OrganizationSettings struct {
	AllowPublicSignup        bool
	RequireEmailVerification bool
}

// Organization is a tenant. Slug is globally unique and never changes.
type Organization struct {
	ID           string
	Name         string
	Slug         string
	Type         OrganizationType
	Status       OrganizationStatus
	Settings     OrganizationSettings
	LicenseSeats int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o Organization) Suspended() bool { return o.Status == OrgStatusSuspended }

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug checks the slug format.
func ValidateSlug(s string) error {
	if len(s) < 3 || len(s) > 48 || !slugRe.MatchString(s) {
		return ErrInvalidSlug
	}
	return nil
}

// Slugify derives a slug from a display name: lowercase ASCII letters and
// digits, other runs collapsed to a single dash, trimmed to 48 characters.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	return s
}

// ParseOrganizationType accepts a known type; empty means the default.
func ParseOrganizationType(s string) (OrganizationType, error) {
	switch t := OrganizationType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return DefaultOrgType, nil
	case OrgTypeCompany, OrgTypeTeam, OrgTypeNonprofit, OrgTypeEducation:
		return t, nil
	default:
		return "", ErrInvalidOrgType
	}
}

// ParseOrganizationStatus accepts active or suspended.
func ParseOrganizationStatus(s string) (OrganizationStatus, error) {
	switch st := OrganizationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrgStatusActive, OrgStatusSuspended:
		return st, nil
	default:
		return "", ErrInvalidOrgStatus
	}
}

// ValidateOrganizationName trims and bounds a display name.
func ValidateOrganizationName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 120 {
		return "", ErrInvalidOrgName
	}
	return name, nil
}
