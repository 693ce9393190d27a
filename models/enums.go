package models

import "fmt"

type UserRole string

const (
	UserRoleAdmin  UserRole = "A"
	UserRoleSeller UserRole = "S"
	UserRoleBuyer  UserRole = "B"
)

func (r UserRole) DisplayName() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleSeller:
		return "Seller"
	case UserRoleBuyer:
		return "Buyer"
	}
	return string(r)
}

type CampaignType string

const (
	CampaignTypePlace    CampaignType = "Place"
	CampaignTypeShopping CampaignType = "Shopping"
)

func ParseCampaignType(s string) (CampaignType, error) {
	switch CampaignType(s) {
	case CampaignTypePlace, CampaignTypeShopping:
		return CampaignType(s), nil
	}
	return "", fmt.Errorf("invalid campaign type %q", s)
}

type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "Draft"
	CampaignStatusActive CampaignStatus = "Active"
	CampaignStatusPaused CampaignStatus = "Paused"
	CampaignStatusEnded  CampaignStatus = "Ended"
)

var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:  {CampaignStatusActive, CampaignStatusEnded},
	CampaignStatusActive: {CampaignStatusPaused, CampaignStatusEnded},
	CampaignStatusPaused: {CampaignStatusActive, CampaignStatusEnded},
	CampaignStatusEnded:  {},
}

func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SlotRequestStatus is the negotiation-request state machine. Accepted,
// Rejected and Expired are terminal.
type SlotRequestStatus string

const (
	SlotRequestStatusRequested   SlotRequestStatus = "Requested"
	SlotRequestStatusNegotiating SlotRequestStatus = "Negotiating"
	SlotRequestStatusAccepted    SlotRequestStatus = "Accepted"
	SlotRequestStatusRejected    SlotRequestStatus = "Rejected"
	SlotRequestStatusExpired     SlotRequestStatus = "Expired"
)

var slotRequestTransitions = map[SlotRequestStatus][]SlotRequestStatus{
	SlotRequestStatusRequested:   {SlotRequestStatusNegotiating, SlotRequestStatusAccepted, SlotRequestStatusRejected, SlotRequestStatusExpired},
	SlotRequestStatusNegotiating: {SlotRequestStatusAccepted, SlotRequestStatusRejected, SlotRequestStatusExpired},
	SlotRequestStatusAccepted:    {},
	SlotRequestStatusRejected:    {},
	SlotRequestStatusExpired:     {},
}

func (s SlotRequestStatus) CanTransitionTo(next SlotRequestStatus) bool {
	for _, allowed := range slotRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SlotRequestStatus) IsTerminal() bool {
	return len(slotRequestTransitions[s]) == 0
}

type SlotStatus string

const (
	SlotStatusActive    SlotStatus = "Active"
	SlotStatusCompleted SlotStatus = "Completed"
	SlotStatusCancelled SlotStatus = "Cancelled"
)

var slotTransitions = map[SlotStatus][]SlotStatus{
	SlotStatusActive:    {SlotStatusCompleted, SlotStatusCancelled},
	SlotStatusCompleted: {},
	SlotStatusCancelled: {},
}

func (s SlotStatus) CanTransitionTo(next SlotStatus) bool {
	for _, allowed := range slotTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type HoldingStatus string

const (
	HoldingStatusHolding         HoldingStatus = "Holding"
	HoldingStatusPartialReleased HoldingStatus = "PartialReleased"
	HoldingStatusCompleted       HoldingStatus = "Completed"
	HoldingStatusRefunded        HoldingStatus = "Refunded"
)

var holdingTransitions = map[HoldingStatus][]HoldingStatus{
	HoldingStatusHolding:         {HoldingStatusPartialReleased, HoldingStatusCompleted, HoldingStatusRefunded},
	HoldingStatusPartialReleased: {HoldingStatusPartialReleased, HoldingStatusCompleted, HoldingStatusRefunded},
	HoldingStatusCompleted:       {},
	HoldingStatusRefunded:        {},
}

func (s HoldingStatus) CanTransitionTo(next HoldingStatus) bool {
	for _, allowed := range holdingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type LedgerEntryType string

const (
	LedgerEntryTypePurchase     LedgerEntryType = "Purchase"
	LedgerEntryTypeSettlement   LedgerEntryType = "Settlement"
	LedgerEntryTypeRefund       LedgerEntryType = "Refund"
	LedgerEntryTypeCancellation LedgerEntryType = "Cancellation"
)

type InquiryStatus string

const (
	InquiryStatusOpen       InquiryStatus = "Open"
	InquiryStatusInProgress InquiryStatus = "InProgress"
	InquiryStatusResolved   InquiryStatus = "Resolved"
	InquiryStatusClosed     InquiryStatus = "Closed"
)

var inquiryTransitions = map[InquiryStatus][]InquiryStatus{
	InquiryStatusOpen:       {InquiryStatusInProgress, InquiryStatusResolved, InquiryStatusClosed},
	InquiryStatusInProgress: {InquiryStatusResolved, InquiryStatusClosed},
	InquiryStatusResolved:   {InquiryStatusClosed, InquiryStatusInProgress},
	InquiryStatusClosed:     {},
}

func (s InquiryStatus) CanTransitionTo(next InquiryStatus) bool {
	for _, allowed := range inquiryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type NotificationStatus string

const (
	NotificationStatusUnread   NotificationStatus = "Unread"
	NotificationStatusRead     NotificationStatus = "Read"
	NotificationStatusArchived NotificationStatus = "Archived"
)

var notificationTransitions = map[NotificationStatus][]NotificationStatus{
	NotificationStatusUnread:   {NotificationStatusRead, NotificationStatusArchived},
	NotificationStatusRead:     {NotificationStatusArchived},
	NotificationStatusArchived: {},
}

func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	for _, allowed := range notificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "Low"
	NotificationPriorityNormal NotificationPriority = "Normal"
	NotificationPriorityHigh   NotificationPriority = "High"
	NotificationPriorityUrgent NotificationPriority = "Urgent"
)

type NotificationType string

const (
	NotificationTypeSlotRequested   NotificationType = "SlotRequested"
	NotificationTypeSlotNegotiation NotificationType = "SlotNegotiation"
	NotificationTypeSlotAccepted    NotificationType = "SlotAccepted"
	NotificationTypeSlotRejected    NotificationType = "SlotRejected"
	NotificationTypeSlotExpired     NotificationType = "SlotExpired"
	NotificationTypeSlotSettled     NotificationType = "SlotSettled"
	NotificationTypeSlotCompleted   NotificationType = "SlotCompleted"
	NotificationTypeSlotCancelled   NotificationType = "SlotCancelled"
	NotificationTypeInquiryReply    NotificationType = "InquiryReply"
	NotificationTypeSystem          NotificationType = "System"
)

// SlotReferenceType identifies which workflow handler owns an outbox
// message.
type SlotReferenceType string

const (
	SlotReferenceTypePurchase      SlotReferenceType = "SPU"
	SlotReferenceTypeSettlement    SlotReferenceType = "SST"
	SlotReferenceTypeRefund        SlotReferenceType = "SRF"
	SlotReferenceTypeRequestExpiry SlotReferenceType = "SRX"
	SlotReferenceTypeNotification  SlotReferenceType = "NTF"
)

type PubSubMessageAction string

const (
	PubSubMessageActionCreate PubSubMessageAction = "C"
	PubSubMessageActionUpdate PubSubMessageAction = "U"
	PubSubMessageActionDelete PubSubMessageAction = "D"
)
