package models

import "time"

type Role string

const (
	RoleSeeker   Role = "service_seeker"
	RoleProvider Role = "service_provider"
	RoleAdmin    Role = "admin"
)

// ProfilePicturePoints is awarded once when a user first sets a profile picture.
const ProfilePicturePoints = 10

type BankDetails struct {
	AccountName   string `bson:"accountName" json:"accountName" validate:"required"`
	AccountNumber string `bson:"accountNumber" json:"accountNumber" validate:"required,numeric,min=6,max=20"`
	BankName      string `bson:"bankName" json:"bankName" validate:"required"`
	Branch        string `bson:"branch" json:"branch,omitempty"`
}

// User is a seeker, provider or admin account.
type User struct {
	ID                     string       `bson:"id" json:"id"`
	Name                   string       `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email                  string       `bson:"email" json:"email" validate:"required,email"`
	PasswordHash           string       `bson:"passwordHash,omitempty" json:"-"`
	Phone                  string       `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,e164|numeric"`
	Role                   Role         `bson:"role" json:"role" validate:"required,oneof=service_seeker service_provider admin"`
	Location               string       `bson:"location,omitempty" json:"location,omitempty" validate:"max=200"`
	ProfilePicture         string       `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	ProfilePicturePublicID string       `bson:"profilePicturePublicId,omitempty" json:"-"`
	IsVerified             bool         `bson:"isVerified" json:"isVerified"`
	AuthProvider           string       `bson:"authProvider,omitempty" json:"authProvider,omitempty"`
	FCMToken               string       `bson:"fcmToken,omitempty" json:"-"`
	ServiceCategory        string       `bson:"serviceCategory,omitempty" json:"serviceCategory,omitempty" validate:"required_if=Role service_provider"`
	HourlyRate             float64      `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty" validate:"required_if=Role service_provider,gte=0"`
	Bio                    string       `bson:"bio,omitempty" json:"bio,omitempty" validate:"max=1000"`
	BankDetails            *BankDetails `bson:"bankDetails,omitempty" json:"bankDetails,omitempty" validate:"required_if=Role service_provider"`

	CertificationPoints    int   `bson:"certificationPoints" json:"certificationPoints" validate:"gte=0"`
	TotalCertifications    int   `bson:"totalCertifications" json:"totalCertifications" validate:"gte=0"`
	VerifiedCertifications int   `bson:"verifiedCertifications" json:"verifiedCertifications" validate:"gte=0"`
	CertificationLevel     Level `bson:"certificationLevel" json:"certificationLevel"`
	ProfilePicturePoints   int   `bson:"profilePicturePoints" json:"profilePicturePoints" validate:"gte=0"`

	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	TotalReviews  int     `bson:"totalReviews" json:"totalReviews"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsProvider() bool { return u.Role == RoleProvider }
func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }

// UpdateLevel re-derives the stored level from the point balance.
func (u *User) UpdateLevel() {
	u.CertificationLevel = CalculatedLevel(u.CertificationPoints)
}

// ScoreDelta is a single change to a user's scoring counters. Storage applies it
// atomically; every counter is floored at zero and the level is re-derived in the same write.
type ScoreDelta struct {
	CertificationPoints    int
	VerifiedCertifications int
	TotalCertifications    int
	ProfilePicturePoints   int
}

func (d ScoreDelta) IsZero() bool {
	return d == ScoreDelta{}
}

// ApprovalDelta is the delta for one approved certification worth points.
func ApprovalDelta(points int) ScoreDelta {
	return ScoreDelta{CertificationPoints: points, VerifiedCertifications: 1}
}

// RevocationDelta undoes ApprovalDelta.
func RevocationDelta(points int) ScoreDelta {
	return ScoreDelta{CertificationPoints: -points, VerifiedCertifications: -1}
}

// ApplyScoreDelta mutates u the same way the storage update does.
func (u *User) ApplyScoreDelta(d ScoreDelta) {
	u.CertificationPoints = floorZero(u.CertificationPoints + d.CertificationPoints)
	u.VerifiedCertifications = floorZero(u.VerifiedCertifications + d.VerifiedCertifications)
	u.TotalCertifications = floorZero(u.TotalCertifications + d.TotalCertifications)
	u.ProfilePicturePoints = floorZero(u.ProfilePicturePoints + d.ProfilePicturePoints)
	u.UpdateLevel()
}

func (u *User) AddCertificationPoints(points int) {
	u.ApplyScoreDelta(ApprovalDelta(points))
}

func (u *User) RemoveCertificationPoints(points int) {
	u.ApplyScoreDelta(RevocationDelta(points))
}

func (u *User) AddProfilePicturePoints(points int) {
	u.ApplyScoreDelta(ScoreDelta{ProfilePicturePoints: points})
}

func (u *User) RemoveProfilePicturePoints(points int) {
	u.ApplyScoreDelta(ScoreDelta{ProfilePicturePoints: -points})
}

// Public strips fields only the owner or an admin may see.
func (u User) Public() User {
	u.BankDetails = nil
	u.Phone = ""
	return u
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// UserRegistration is the sign-up payload.
type UserRegistration struct {
	Name            string       `json:"name" binding:"required"`
	Email           string       `json:"email" binding:"required,email"`
	Password        string       `json:"password" binding:"required,min=8"`
	Phone           string       `json:"phone"`
	Role            Role         `json:"role" binding:"required,oneof=service_seeker service_provider"`
	Location        string       `json:"location"`
	ServiceCategory string       `json:"serviceCategory"`
	HourlyRate      float64      `json:"hourlyRate"`
	BankDetails     *BankDetails `json:"bankDetails"`
}

// ProfileUpdate carries the client-editable profile fields. Scoring fields are absent on purpose.
type ProfileUpdate struct {
	Name            *string      `json:"name"`
	Phone           *string      `json:"phone"`
	Location        *string      `json:"location"`
	Bio             *string      `json:"bio"`
	ServiceCategory *string      `json:"serviceCategory"`
	HourlyRate      *float64     `json:"hourlyRate"`
	BankDetails     *BankDetails `json:"bankDetails"`
	FCMToken        *string      `json:"fcmToken"`
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ServiceCategory != nil {
		u.ServiceCategory = *p.ServiceCategory
	}
	if p.HourlyRate != nil {
		u.HourlyRate = *p.HourlyRate
	}
	if p.BankDetails != nil {
		u.BankDetails = p.BankDetails
	}
	if p.FCMToken != nil {
		u.FCMToken = *p.FCMToken
	}
}

// ProviderSearchCriteria filters provider discovery.
type ProviderSearchCriteria struct {
	Category  string
	Location  string
	MinLevel  Level
	MinRating float64
	Limit     int64
	Skip      int64
}

// AuthResponse is returned after sign-in or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CertificationScore returns the user's stored certification counters.
func (u *User) CertificationScore() ProviderScore {
	return ProviderScore{
		ProviderID:             u.ID,
		CertificationPoints:    u.CertificationPoints,
		VerifiedCertifications: u.VerifiedCertifications,
		TotalCertifications:    u.TotalCertifications,
	}
}
