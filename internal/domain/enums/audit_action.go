package enums

type AuditAction string

const (
	AuditActionClaim      AuditAction = "CLAIM"
	AuditActionRelease    AuditAction = "RELEASE"
	AuditActionApprove    AuditAction = "APPROVE"
	AuditActionReject     AuditAction = "REJECT"
	AuditActionEscalate   AuditAction = "ESCALATE"
	AuditActionReassign   AuditAction = "REASSIGN"
	AuditActionReactivate AuditAction = "REACTIVATE"
	AuditActionPurge      AuditAction = "PURGE"
)
