package common

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

const clientAppID = "reader-cli"

var clientNamespace = uuid.MustParse("6f1c2a0e-3b7d-4d55-9a8e-1f3c5e7b9d21")

// GetClientIdentifier returns a stable UUID for this installation. The
// machine id is hashed with the app id so the raw id never leaves the host.
func GetClientIdentifier() uuid.UUID {
	id, err := machineid.ProtectedID(clientAppID)
	if err != nil {
		// Fallback to a random ephemeral UUID if machine ID cannot be obtained
		return uuid.New()
	}
	return uuid.NewSHA1(clientNamespace, []byte(id))
}
