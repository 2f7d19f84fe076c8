package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/pkg/logger"
)

// Options configures a DomainStore.
type Options struct {
	JWTSecret  string
	SessionTTL time.Duration
	// Clock overrides time.Now.
	Clock func() time.Time
}

// DomainStore bundles the services that share one set of collections.
type DomainStore struct {
	Sessions     *SessionService
	Companies    *CompanyService
	Livestock    *LivestockService
	Groups       *GroupService
	Pastures     *PastureService
	Appointments *AppointmentService
}

// NewDomainStore builds every service over kv.
func NewDomainStore(kv ports.KVStore, log zerolog.Logger, opts Options) *DomainStore {
	col := NewCollections(kv, log)
	if opts.Clock != nil {
		col.now = opts.Clock
	}

	return &DomainStore{
		Sessions:     NewSessionService(col, opts.JWTSecret, opts.SessionTTL, logger.Component(log, "session")),
		Companies:    NewCompanyService(col, logger.Component(log, "company")),
		Livestock:    NewLivestockService(col, logger.Component(log, "livestock")),
		Groups:       NewGroupService(col, logger.Component(log, "group")),
		Pastures:     NewPastureService(col, logger.Component(log, "pasture")),
		Appointments: NewAppointmentService(col, logger.Component(log, "appointment")),
	}
}
