package core

import "auditcore/pkg/domain"

type (
	EntityType     = domain.EntityType
	AuditStatus    = domain.AuditStatus
	DocumentStatus = domain.DocumentStatus
	PersonRecord   = domain.PersonRecord
	DocumentRecord = domain.DocumentRecord
	RosterMetrics  = domain.RosterMetrics
	DocumentHealth = domain.DocumentHealth
	Outcome        = domain.Outcome
	RosterStore    = domain.RosterStore
	DocumentStore  = domain.DocumentStore
)

const (
	EntityPerson   = domain.EntityPerson
	EntityDocument = domain.EntityDocument
)

const (
	StatusOK    = domain.StatusOK
	StatusAudit = domain.StatusAudit
)

const (
	OutcomeCreated = domain.OutcomeCreated
	OutcomeUpdated = domain.OutcomeUpdated
)
