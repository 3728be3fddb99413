package models

import "time"

type CertificationCategory string

const (
	CategoryTechnical    CertificationCategory = "technical"
	CategorySafety       CertificationCategory = "safety"
	CategoryProfessional CertificationCategory = "professional"
	CategoryTrade        CertificationCategory = "trade"
	CategoryOther        CertificationCategory = "other"
)

type CertificationStatus string

const (
	CertificationPending  CertificationStatus = "pending"
	CertificationApproved CertificationStatus = "approved"
	CertificationRejected CertificationStatus = "rejected"
)

const (
	DefaultCertificationPoints = 10
	MinCertificationPoints     = 1
	MaxCertificationPoints     = 100
)

type Certification struct {
	ID                  string                `bson:"id" json:"id"`
	ServiceProvider     string                `bson:"serviceProvider" json:"serviceProvider" validate:"required"`
	Title               string                `bson:"title" json:"title" validate:"required,max=200"`
	IssuingOrganization string                `bson:"issuingOrganization" json:"issuingOrganization" validate:"required,max=200"`
	CertificateNumber   string                `bson:"certificateNumber,omitempty" json:"certificateNumber,omitempty" validate:"max=100"`
	IssueDate           time.Time             `bson:"issueDate" json:"issueDate" validate:"required"`
	ExpiryDate          *time.Time            `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	Category            CertificationCategory `bson:"category" json:"category" validate:"required,oneof=technical safety professional trade other"`
	Points              int                   `bson:"points" json:"points" validate:"min=1,max=100"`
	DocumentFile        string                `bson:"documentFile" json:"documentFile" validate:"required"`
	DocumentPublicID    string                `bson:"documentPublicId,omitempty" json:"-"`
	Status              CertificationStatus   `bson:"status" json:"status" validate:"oneof=pending approved rejected"`
	ReviewedBy          string                `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time            `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	RejectionReason     string                `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt           time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDefaults fills in the default points, category and status for a fresh upload.
func (c *Certification) ApplyDefaults() {
	if c.Points == 0 {
		c.Points = DefaultCertificationPoints
	}
	if c.Category == "" {
		c.Category = CategoryOther
	}
	if c.Status == "" {
		c.Status = CertificationPending
	}
}

func (c *Certification) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && now.After(*c.ExpiryDate)
}

func (c *Certification) IsActive(now time.Time) bool {
	return c.Status == CertificationApproved && !c.IsExpired(now)
}

// CertificationReview is the admin decision applied to a pending or approved certification.
type CertificationReview struct {
	Status          CertificationStatus
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason string
}

// ScoreDeltaFor returns the change to the owner's counters when a certification moves from
// prev to next.
func ScoreDeltaFor(prev, next CertificationStatus, points int) ScoreDelta {
	switch {
	case prev != CertificationApproved && next == CertificationApproved:
		return ApprovalDelta(points)
	case prev == CertificationApproved && next != CertificationApproved:
		return RevocationDelta(points)
	}
	return ScoreDelta{}
}

// CertificationUpload is the multipart form accompanying the document file.
type CertificationUpload struct {
	Title               string `form:"title" binding:"required"`
	IssuingOrganization string `form:"issuingOrganization" binding:"required"`
	CertificateNumber   string `form:"certificateNumber"`
	IssueDate           string `form:"issueDate" binding:"required"`
	ExpiryDate          string `form:"expiryDate"`
	Category            string `form:"category"`
	Points              int    `form:"points"`
}

// ProviderScore is a recomputed set of counters used by reconciliation.
type ProviderScore struct {
	ProviderID             string `bson:"_id"`
	CertificationPoints    int    `bson:"points"`
	VerifiedCertifications int    `bson:"verified"`
	TotalCertifications    int    `bson:"total"`
}

// SameCounters reports whether both scores carry the same counters.
func (s ProviderScore) SameCounters(o ProviderScore) bool {
	return s.CertificationPoints == o.CertificationPoints &&
		s.VerifiedCertifications == o.VerifiedCertifications &&
		s.TotalCertifications == o.TotalCertifications
}
