package booking

// Gender is the requested interpreter gender, if any.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// Certification is the requested interpreter certification level, if any.
type Certification string

const (
	CertUnspecified Certification = ""
	CertNormal      Certification = "normal"
	CertCertified   Certification = "certified"
	CertLaw         Certification = "law"
	CertHealth      Certification = "health"
	// CertBoth means the customer accepts both a normal and a certified
	// interpreter.
	CertBoth Certification = "both"
)

// Booking-form tag values carried in the "job for" list.
const (
	tagMale      = "male"
	tagFemale    = "female"
	tagNormal    = "normal"
	tagCertified = "certified"
	tagLaw       = "certified_in_law"
	tagHealth    = "certified_in_health"

	// Display names used when encoding back to a human-readable tag list.
	tagMan    = "Man"
	tagKvinna = "Kvinna"
)

// DeriveGender extracts the requested gender from the booking tags.
func DeriveGender(jobFor []string) Gender {
	if containsTag(jobFor, tagMale) {
		return GenderMale
	}
	if containsTag(jobFor, tagFemale) {
		return GenderFemale
	}
	return GenderUnspecified
}

// DeriveCertification extracts the requested certification level from the
// booking tags. A list naming both "normal" and "certified" collapses to
// CertBoth.
func DeriveCertification(jobFor []string) Certification {
	hasNormal := containsTag(jobFor, tagNormal)
	hasCertified := containsTag(jobFor, tagCertified)

	switch {
	case hasNormal && hasCertified:
		return CertBoth
	case hasNormal:
		return CertNormal
	case hasCertified:
		return CertCertified
	case containsTag(jobFor, tagLaw):
		return CertLaw
	case containsTag(jobFor, tagHealth):
		return CertHealth
	default:
		return CertUnspecified
	}
}

// EncodeJobFor is the inverse of the two derivations: it rebuilds the
// human-readable tag list placed in notification payloads.
func EncodeJobFor(g Gender, c Certification) []string {
	var jobFor []string

	switch g {
	case GenderMale:
		jobFor = append(jobFor, tagMan)
	case GenderFemale:
		jobFor = append(jobFor, tagKvinna)
	}

	switch c {
	case CertBoth:
		jobFor = append(jobFor, tagNormal, tagCertified)
	case CertNormal:
		jobFor = append(jobFor, tagNormal)
	case CertCertified:
		jobFor = append(jobFor, tagCertified)
	case CertLaw:
		jobFor = append(jobFor, tagLaw)
	case CertHealth:
		jobFor = append(jobFor, tagHealth)
	}

	return jobFor
}

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
