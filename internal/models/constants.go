package models

// DisputeKind тип спора.
type DisputeKind string

const (
	DisputeKindOrder         DisputeKind = "order"
	DisputeKindPayment       DisputeKind = "payment"
	DisputeKindQuality       DisputeKind = "quality"
	DisputeKindDeadline      DisputeKind = "deadline"
	DisputeKindCommunication DisputeKind = "communication"
	DisputeKindOther         DisputeKind = "other"
)

// DisputeStatus статус жизненного цикла спора.
type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under-review"
	DisputeStatusEscalated   DisputeStatus = "escalated"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusClosed      DisputeStatus = "closed"
)

// DisputePriority приоритет спора.
type DisputePriority string

const (
	PriorityLow      DisputePriority = "low"
	PriorityMedium   DisputePriority = "medium"
	PriorityHigh     DisputePriority = "high"
	PriorityCritical DisputePriority = "critical"
)

// PartyRole роль участника спора.
type PartyRole string

const (
	RoleClient     PartyRole = "client"
	RoleFreelancer PartyRole = "freelancer"
)

// EvidenceType тип доказательства.
type EvidenceType string

const (
	EvidenceDocument   EvidenceType = "document"
	EvidenceImage      EvidenceType = "image"
	EvidenceScreenshot EvidenceType = "screenshot"
	EvidenceLink       EvidenceType = "link"
	EvidenceVideo      EvidenceType = "video"
	EvidenceOther      EvidenceType = "other"
)

// TimelineEventKind тип записи в журнале спора.
type TimelineEventKind string

const (
	EventCreated            TimelineEventKind = "created"
	EventResponded          TimelineEventKind = "responded"
	EventEvidenceAdded      TimelineEventKind = "evidence-added"
	EventEvidenceVerified   TimelineEventKind = "evidence-verified"
	EventEscalated          TimelineEventKind = "escalated"
	EventResolved           TimelineEventKind = "resolved"
	EventResolutionAccepted TimelineEventKind = "resolution-accepted"
	EventClosed             TimelineEventKind = "closed"
)

// ResolutionKind тип решения по спору.
type ResolutionKind string

const (
	ResolutionRefund        ResolutionKind = "refund"
	ResolutionPartialRefund ResolutionKind = "partial-refund"
	ResolutionRevision      ResolutionKind = "revision"
	ResolutionCancellation  ResolutionKind = "cancellation"
	ResolutionCompletion    ResolutionKind = "completion"
	ResolutionCustom        ResolutionKind = "custom"
)

// ReviewTargetType объект отзыва.
type ReviewTargetType string

const (
	TargetService    ReviewTargetType = "service"
	TargetProject    ReviewTargetType = "project"
	TargetFreelancer ReviewTargetType = "freelancer"
	TargetClient     ReviewTargetType = "client"
)

// ReviewStatus статус публикации отзыва.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusFlagged  ReviewStatus = "flagged"
	ReviewStatusRemoved  ReviewStatus = "removed"
)

// ModerationState статус модерации отзыва.
type ModerationState string

const (
	ModerationPending   ModerationState = "pending"
	ModerationReviewing ModerationState = "reviewing"
	ModerationApproved  ModerationState = "approved"
	ModerationRejected  ModerationState = "rejected"
	ModerationEdited    ModerationState = "edited"
)

// ModerationAction решение модератора.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionEdit    ModerationAction = "edit"
)

// FlagKind причина жалобы на отзыв.
type FlagKind string

const (
	FlagSpam          FlagKind = "spam"
	FlagInappropriate FlagKind = "inappropriate"
	FlagFake          FlagKind = "fake"
	FlagOffensive     FlagKind = "offensive"
	FlagIrrelevant    FlagKind = "irrelevant"
	FlagOther         FlagKind = "other"
)

// SessionChannel канал проведения медиации.
type SessionChannel string

const (
	ChannelVideo SessionChannel = "video"
	ChannelChat  SessionChannel = "chat"
	ChannelEmail SessionChannel = "email"
)

// SessionStatus статус сессии медиации.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// AllDisputeStatuses порядок статусов для аналитики.
var AllDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusUnderReview,
	DisputeStatusEscalated,
	DisputeStatusResolved,
	DisputeStatusClosed,
}

// ValidDisputeKinds список валидных типов споров
var ValidDisputeKinds = map[DisputeKind]struct{}{
	DisputeKindOrder:         {},
	DisputeKindPayment:       {},
	DisputeKindQuality:       {},
	DisputeKindDeadline:      {},
	DisputeKindCommunication: {},
	DisputeKindOther:         {},
}

// ValidPartyRoles список валидных ролей участников
var ValidPartyRoles = map[PartyRole]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
}

// ValidEvidenceTypes список валидных типов доказательств
var ValidEvidenceTypes = map[EvidenceType]struct{}{
	EvidenceDocument:   {},
	EvidenceImage:      {},
	EvidenceScreenshot: {},
	EvidenceLink:       {},
	EvidenceVideo:      {},
	EvidenceOther:      {},
}

// ValidResolutionKinds список валидных типов решений
var ValidResolutionKinds = map[ResolutionKind]struct{}{
	ResolutionRefund:        {},
	ResolutionPartialRefund: {},
	ResolutionRevision:      {},
	ResolutionCancellation:  {},
	ResolutionCompletion:    {},
	ResolutionCustom:        {},
}

// ValidReviewTargets список валидных объектов отзывов
var ValidReviewTargets = map[ReviewTargetType]struct{}{
	TargetService:    {},
	TargetProject:    {},
	TargetFreelancer: {},
	TargetClient:     {},
}

// ValidFlagKinds список валидных причин жалоб
var ValidFlagKinds = map[FlagKind]struct{}{
	FlagSpam:          {},
	FlagInappropriate: {},
	FlagFake:          {},
	FlagOffensive:     {},
	FlagIrrelevant:    {},
	FlagOther:         {},
}

// ValidModerationActions список допустимых решений модератора
var ValidModerationActions = map[ModerationAction]struct{}{
	ActionApprove: {},
	ActionReject:  {},
	ActionEdit:    {},
}
