package ports

import "context"

// Logical keys of the persisted collections.
const (
	KeyUsers          = "users"
	KeyCompanies      = "companies"
	KeyLivestock      = "livestock"
	KeyGroups         = "groups"
	KeyPastures       = "potreros"
	KeyAppointments   = "citas"
	KeyFeedingHistory = "historialAlimentacion"
	KeyCurrentUser    = "currentUser"
)

// KVStore is the persistence collaborator: whole JSON blobs read and written
// by string key. Read reports found=false for a key that was never written.
type KVStore interface {
	Read(ctx context.Context, key string) (value []byte, found bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
