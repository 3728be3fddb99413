package models

import "time"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeClosed      DisputeStatus = "closed"
)

// IsTerminal reports whether no further workflow transition is allowed.
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeResolved || s == DisputeClosed
}

type DisputeCategory string

const (
	DisputeServiceQuality         DisputeCategory = "service_quality"
	DisputeNoShow                 DisputeCategory = "no_show"
	DisputePaymentIssue           DisputeCategory = "payment_issue"
	DisputePricing                DisputeCategory = "pricing_dispute"
	DisputePropertyDamage         DisputeCategory = "property_damage"
	DisputeUnprofessionalBehavior DisputeCategory = "unprofessional_behavior"
	DisputeSafetyConcern          DisputeCategory = "safety_concern"
	DisputeOther                  DisputeCategory = "other"
)

type DisputePriority string

const (
	PriorityLow    DisputePriority = "low"
	PriorityMedium DisputePriority = "medium"
	PriorityHigh   DisputePriority = "high"
	PriorityUrgent DisputePriority = "urgent"
)

type DisputeOutcome string

const (
	OutcomeRefund        DisputeOutcome = "refund"
	OutcomePartialRefund DisputeOutcome = "partial_refund"
	OutcomeServiceRedo   DisputeOutcome = "service_redo"
	OutcomeWarning       DisputeOutcome = "warning"
	OutcomeSuspension    DisputeOutcome = "suspension"
	OutcomeNoAction      DisputeOutcome = "no_action"
)

func (o DisputeOutcome) Valid() bool {
	switch o {
	case OutcomeRefund, OutcomePartialRefund, OutcomeServiceRedo, OutcomeWarning, OutcomeSuspension, OutcomeNoAction:
		return true
	}
	return false
}

// MovesMoney reports whether the outcome pays money back to the seeker.
func (o DisputeOutcome) MovesMoney() bool {
	return o == OutcomeRefund || o == OutcomePartialRefund
}

type AdminNote struct {
	Note      string    `bson:"note" json:"note"`
	AdminID   string    `bson:"adminId" json:"adminId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type DisputeMessage struct {
	Sender    string    `bson:"sender" json:"sender"`
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsAdmin   bool      `bson:"isAdmin" json:"isAdmin"`
}

type Evidence struct {
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId,omitempty" json:"-"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type Dispute struct {
	ID              string           `bson:"id" json:"id"`
	Title           string           `bson:"title" json:"title" validate:"required,max=200"`
	Description     string           `bson:"description" json:"description" validate:"required,max=5000"`
	Booking         string           `bson:"booking" json:"booking" validate:"required"`
	ServiceProvider string           `bson:"serviceProvider" json:"serviceProvider" validate:"required"`
	ServiceSeeker   string           `bson:"serviceSeeker" json:"serviceSeeker" validate:"required"`
	ReportedBy      string           `bson:"reportedBy" json:"reportedBy" validate:"required"`
	Category        DisputeCategory  `bson:"category" json:"category" validate:"required,oneof=service_quality no_show payment_issue pricing_dispute property_damage unprofessional_behavior safety_concern other"`
	Priority        DisputePriority  `bson:"priority" json:"priority" validate:"oneof=low medium high urgent"`
	Status          DisputeStatus    `bson:"status" json:"status" validate:"oneof=open under_review resolved closed"`
	AssignedAdmin   string           `bson:"assignedAdmin,omitempty" json:"assignedAdmin,omitempty"`
	AdminNotes      []AdminNote      `bson:"adminNotes" json:"adminNotes"`
	Messages        []DisputeMessage `bson:"messages" json:"messages"`
	Evidence        []Evidence       `bson:"evidence" json:"evidence"`
	Resolution      string           `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedAt      *time.Time       `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy      string           `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	Outcome         *DisputeOutcome  `bson:"outcome,omitempty" json:"outcome,omitempty"`
	OutcomeAmount   *float64         `bson:"outcomeAmount,omitempty" json:"outcomeAmount,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt"`
}

func (d *Dispute) IsParty(userID string) bool {
	return d.ServiceSeeker == userID || d.ServiceProvider == userID || d.ReportedBy == userID
}

func NewAdminNote(note, adminID string, now time.Time) AdminNote {
	return AdminNote{Note: note, AdminID: adminID, Timestamp: now}
}

func NewDisputeMessage(sender, message string, isAdmin bool, now time.Time) DisputeMessage {
	return DisputeMessage{Sender: sender, Message: message, Timestamp: now, IsAdmin: isAdmin}
}

// Resolution is the full set of fields written when a dispute is resolved.
type Resolution struct {
	Resolution    string
	ResolvedBy    string
	ResolvedAt    time.Time
	Outcome       *DisputeOutcome
	OutcomeAmount *float64
}

// NewResolution builds a Resolution. outcome and amount are only recorded when outcome is set.
func NewResolution(resolution, adminID string, outcome *DisputeOutcome, amount *float64, now time.Time) Resolution {
	r := Resolution{Resolution: resolution, ResolvedBy: adminID, ResolvedAt: now}
	if outcome != nil {
		r.Outcome = outcome
		r.OutcomeAmount = amount
	}
	return r
}

// Resolve applies r to d.
func (d *Dispute) Resolve(r Resolution) {
	resolvedAt := r.ResolvedAt
	d.Status = DisputeResolved
	d.Resolution = r.Resolution
	d.ResolvedAt = &resolvedAt
	d.ResolvedBy = r.ResolvedBy
	if r.Outcome != nil {
		d.Outcome = r.Outcome
		d.OutcomeAmount = r.OutcomeAmount
	}
	d.UpdatedAt = r.ResolvedAt
}

type NewDisputeRequest struct {
	Booking     string          `json:"booking" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Category    DisputeCategory `json:"category" binding:"required"`
	Priority    DisputePriority `json:"priority"`
}

type ResolveDisputeRequest struct {
	Resolution    string          `json:"resolution" binding:"required"`
	Outcome       *DisputeOutcome `json:"outcome"`
	OutcomeAmount *float64        `json:"outcomeAmount"`
}

type DisputeFilter struct {
	Status   DisputeStatus
	Party    string
	Assigned string
	Limit    int64
	Skip     int64
}
