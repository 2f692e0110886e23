package constants

import "fmt"

const (
	RoleNasabah = "nasabah"
	RolePetugas = "petugas"
	RoleAdmin   = "admin"
)

// Template pesan error role
const (
	ErrOnlyPetugasCanAccess = "❌ Hanya petugas atau admin yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess  = "❌ Hanya admin yang boleh mengakses fitur %s."
)

func RoleErrorPetugas(feature string) string {
	return fmt.Sprintf(ErrOnlyPetugasCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

var (
	AllRoles = []string{
		RoleNasabah,
		RolePetugas,
		RoleAdmin,
	}

	StaffAndAbove = []string{
		RolePetugas,
		RoleAdmin,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
