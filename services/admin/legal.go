package admin

import "fixerhub/models"

// GetLegalSections returns all legal documents.
func (a *DefaultAdminService) GetLegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:      "tos",
			Title:   "Terms of Service",
			Summary: "These terms govern your use of the FixerHub platform.",
			Content: termsOfService,
			Version: "v1.0",
		},
		{
			ID:      "privacy",
			Title:   "Privacy Policy",
			Summary: "How FixerHub collects and uses personal data.",
			Content: privacyPolicy,
			Version: "v1.0",
		},
		{
			ID:       "provider-terms",
			Title:    "Provider Agreement",
			Summary:  "Obligations of service providers, certifications and levels.",
			Content:  providerAgreement,
			Audience: models.RoleProvider,
			Version:  "v1.0",
		},
		{
			ID:      "payments",
			Title:   "Payment, Refund & Dispute Policy",
			Summary: "How payments, refunds and disputes work on FixerHub.",
			Content: paymentPolicy,
			Version: "v1.0",
		},
	}
}

// GetLegalSectionsFor returns the documents that apply to role.
func (a *DefaultAdminService) GetLegalSectionsFor(role models.Role) []models.LegalSection {
	var filtered []models.LegalSection
	for _, section := range a.GetLegalSections() {
		if section.Audience == "" || section.Audience == role {
			filtered = append(filtered, section)
		}
	}
	return filtered
}

const termsOfService = `Welcome to FixerHub. By using the platform you agree to these terms.

1. Eligibility: You must be 18 or older.
2. Platform: FixerHub connects service seekers with independent home service providers.
3. Liability: Providers are independent; FixerHub facilitates bookings and payments.
4. Bookings: A booking is binding once the provider accepts it or the seeker accepts a quote.
5. Reviews: Only seekers with a completed booking may review the provider, once per booking.`

const privacyPolicy = `FixerHub collects only the data needed to run the marketplace.

1. Data: Name, email, phone, location, payment references and uploaded documents.
2. Use: Matching, billing, notifications and dispute handling.
3. Third parties: Stripe (card payments), Cloudinary (files), Firebase (push), email delivery.
4. Rights: You may request deletion of your account at any time.`

const providerAgreement = `Providers agree to:

- Keep their service category, hourly rate and bank details accurate.
- Upload only genuine certifications. Each approved certification earns points; levels are
  bronze, silver (50), gold (150), platinum (300) and diamond (500).
- Confirm bank transfers and cash payments promptly and honestly.

Certifications found to be invalid are revoked and their points withdrawn.`

const paymentPolicy = `1. Card payments are processed by Stripe.
2. Bank transfers and cash are confirmed by the provider.
3. An invoice is issued when a booking is paid.
4. Disputes may be opened by either party and are resolved by an admin.
5. A dispute resolved with a refund outcome refunds the settled payment in full or in part.`
