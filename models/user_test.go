package models

import "testing"

func TestScoreDeltaFloorsAtZero(t *testing.T) {
	u := &User{CertificationPoints: 5, VerifiedCertifications: 0}
	u.RemoveCertificationPoints(20)
	if u.CertificationPoints != 0 || u.VerifiedCertifications != 0 {
		t.Fatalf("counters went negative: %+v", u)
	}
	if u.CertificationLevel != LevelBronze {
		t.Fatalf("level = %s", u.CertificationLevel)
	}
}

func TestAddAndRemoveCertificationPointsRoundTrip(t *testing.T) {
	u := &User{CertificationPoints: 40, VerifiedCertifications: 2}
	u.UpdateLevel()
	u.AddCertificationPoints(15)
	if u.CertificationPoints != 55 || u.VerifiedCertifications != 3 || u.CertificationLevel != LevelSilver {
		t.Fatalf("after add: %+v", u)
	}
	u.RemoveCertificationPoints(15)
	if u.CertificationPoints != 40 || u.VerifiedCertifications != 2 || u.CertificationLevel != LevelBronze {
		t.Fatalf("after remove: %+v", u)
	}
}

func TestProfilePicturePointsDoNotChangeLevel(t *testing.T) {
	u := &User{CertificationPoints: 45}
	u.UpdateLevel()
	u.AddProfilePicturePoints(ProfilePicturePoints)
	if u.ProfilePicturePoints != ProfilePicturePoints {
		t.Fatalf("profile points = %d", u.ProfilePicturePoints)
	}
	if u.CertificationLevel != LevelBronze {
		t.Fatalf("level = %s, profile points must not count towards it", u.CertificationLevel)
	}
	u.RemoveProfilePicturePoints(ProfilePicturePoints * 2)
	if u.ProfilePicturePoints != 0 {
		t.Fatalf("profile points = %d", u.ProfilePicturePoints)
	}
}

func TestPublicHidesPrivateFields(t *testing.T) {
	u := User{Phone: "0771234567", BankDetails: &BankDetails{AccountNumber: "123456"}}
	pub := u.Public()
	if pub.Phone != "" || pub.BankDetails != nil {
		t.Fatalf("Public leaked fields: %+v", pub)
	}
	if u.Phone == "" {
		t.Fatal("Public mutated the receiver")
	}
}

func TestProfileUpdateApplyLeavesUnsetFields(t *testing.T) {
	u := &User{Name: "Kamal", Location: "Kandy", CertificationPoints: 70}
	name := "Kamal Perera"
	ProfileUpdate{Name: &name}.Apply(u)
	if u.Name != name || u.Location != "Kandy" || u.CertificationPoints != 70 {
		t.Fatalf("unexpected user after apply: %+v", u)
	}
}
