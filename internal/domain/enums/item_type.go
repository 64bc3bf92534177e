package enums

type ItemType string

const (
	ItemTypeIdentitySubmission ItemType = "identity_submission"
	ItemTypeCampaign           ItemType = "campaign"
	ItemTypeDocumentReport     ItemType = "document_report"
	ItemTypeCampaignReport     ItemType = "campaign_report"
	ItemTypeCreatorReport      ItemType = "creator_report"
	ItemTypeVolunteerReport    ItemType = "volunteer_report"
	ItemTypeTransactionReport  ItemType = "transaction_report"
	ItemTypeSupportTicket      ItemType = "support_ticket"
	ItemTypeSuspendedAccount   ItemType = "suspended_account"
)

func AllItemTypes() []ItemType {
	return []ItemType{
		ItemTypeIdentitySubmission,
		ItemTypeCampaign,
		ItemTypeDocumentReport,
		ItemTypeCampaignReport,
		ItemTypeCreatorReport,
		ItemTypeVolunteerReport,
		ItemTypeTransactionReport,
		ItemTypeSupportTicket,
		ItemTypeSuspendedAccount,
	}
}

func (t ItemType) Valid() bool {
	for _, known := range AllItemTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsReport covers the five report kinds that resolve into the
// report_resolved analytics group.
func (t ItemType) IsReport() bool {
	switch t {
	case ItemTypeDocumentReport, ItemTypeCampaignReport, ItemTypeCreatorReport,
		ItemTypeVolunteerReport, ItemTypeTransactionReport:
		return true
	}
	return false
}
