package models

type LegalSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Audience Role   `json:"audience,omitempty"` // empty means every role
	Version  string `json:"version"`
}

// PlatformStats is the admin dashboard snapshot.
type PlatformStats struct {
	UsersByRole            map[Role]int64                `json:"usersByRole"`
	BookingsByStatus       map[BookingStatus]int64       `json:"bookingsByStatus"`
	CertificationsByStatus map[CertificationStatus]int64 `json:"certificationsByStatus"`
	DisputesByStatus       map[DisputeStatus]int64       `json:"disputesByStatus"`
}
