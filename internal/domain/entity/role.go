package entity

// Role IDs carried in access token claims. Accounts live in the external
// identity service.
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
	RoleIDStaff   = 4
)

// RoleNames maps CLI/token role names to IDs.
var RoleNames = map[string]int{
	"admin":   RoleIDAdmin,
	"doctor":  RoleIDDoctor,
	"patient": RoleIDPatient,
	"staff":   RoleIDStaff,
}

func IsValidRoleID(id int) bool {
	for _, roleID := range RoleNames {
		if roleID == id {
			return true
		}
	}
	return false
}
