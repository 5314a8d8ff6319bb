package services

import (
	"regexp"
	"strings"

	"certprep-platform/models"
)

// CertificationGeneral is the fallback code when no signal resolves.
const CertificationGeneral = "GENERAL"

// Certification describes one entry of the known-certification catalog.
type Certification struct {
	Code     string   // short code, e.g. "SAA"
	ExamCode string   // official exam code, e.g. "SAA-C03"
	Names    []string // canonical names matched in document content
	Aliases  []string // extra spellings matched in paths and filenames
}

// Classification is the classifier output: the resolved code plus all three
// raw signals, retained for audit.
type Classification struct {
	Code    string
	Signals models.DetectionSignals
}

// CertificationClassifier infers a target certification from upload context.
// Three independent signals (storage location, filename, leading content)
// each resolve to a code or GENERAL, then an explicit decision table picks
// the winner.
type CertificationClassifier struct {
	catalog      []Certification
	examCodeRe   *regexp.Regexp
	contentLimit int
}

// NewCertificationClassifier builds a classifier over the AWS certification
// catalog.
func NewCertificationClassifier() *CertificationClassifier {
	return &CertificationClassifier{
		catalog:      awsCertifications,
		examCodeRe:   regexp.MustCompile(`(?i)\b(CLF|SAA|DVA|SOA|SAP|DOP|SCS|ANS|MLS|DEA)-C0\d\b`),
		contentLimit: 2000,
	}
}

var awsCertifications = []Certification{
	{Code: "CCP", ExamCode: "CLF-C02", Names: []string{"Cloud Practitioner"}, Aliases: []string{"cloud-practitioner", "practitioner", "clf"}},
	{Code: "SAA", ExamCode: "SAA-C03", Names: []string{"Solutions Architect Associate", "Solutions Architect - Associate"}, Aliases: []string{"solutions-architect-associate", "architect-associate"}},
	{Code: "DVA", ExamCode: "DVA-C02", Names: []string{"Developer Associate", "Developer - Associate"}, Aliases: []string{"developer-associate"}},
	{Code: "SOA", ExamCode: "SOA-C02", Names: []string{"SysOps Administrator"}, Aliases: []string{"sysops", "sysops-administrator"}},
	{Code: "SAP", ExamCode: "SAP-C02", Names: []string{"Solutions Architect Professional", "Solutions Architect - Professional"}, Aliases: []string{"solutions-architect-professional", "architect-professional"}},
	{Code: "DOP", ExamCode: "DOP-C02", Names: []string{"DevOps Engineer Professional", "DevOps Engineer - Professional"}, Aliases: []string{"devops-professional", "devops-engineer"}},
	{Code: "SCS", ExamCode: "SCS-C02", Names: []string{"Security Specialty", "Security - Specialty"}, Aliases: []string{"security-specialty"}},
	{Code: "ANS", ExamCode: "ANS-C01", Names: []string{"Advanced Networking"}, Aliases: []string{"advanced-networking"}},
	{Code: "MLS", ExamCode: "MLS-C01", Names: []string{"Machine Learning Specialty", "Machine Learning - Specialty"}, Aliases: []string{"machine-learning-specialty"}},
	{Code: "DEA", ExamCode: "DEA-C01", Names: []string{"Data Engineer Associate", "Data Engineer - Associate"}, Aliases: []string{"data-engineer-associate"}},
}

// examCodePrefixes maps the exam-code family back to the short code. CLF is
// marketed as the Cloud Practitioner (CCP) exam.
var examCodePrefixes = map[string]string{
	"CLF": "CCP", "SAA": "SAA", "DVA": "DVA", "SOA": "SOA", "SAP": "SAP",
	"DOP": "DOP", "SCS": "SCS", "ANS": "ANS", "MLS": "MLS", "DEA": "DEA",
}

// Classify resolves a certification code from the three upload signals. It is
// total: every input yields exactly one code, defaulting to GENERAL.
func (c *CertificationClassifier) Classify(storageKey, filename, leadingText string) Classification {
	signals := models.DetectionSignals{
		Location: c.matchLocation(storageKey),
		Filename: c.matchFilename(filename),
		Content:  c.matchContent(leadingText),
	}

	return Classification{
		Code:    resolveSignals(signals),
		Signals: signals,
	}
}

// resolveSignals is the decision table. Content is treated as more reliable
// than placement: when location and content disagree (both non-GENERAL),
// content wins. Otherwise the first non-GENERAL signal in priority order
// location, content, filename is used.
func resolveSignals(s models.DetectionSignals) string {
	switch {
	case s.Location != CertificationGeneral && s.Content != CertificationGeneral && s.Location != s.Content:
		return s.Content
	case s.Location != CertificationGeneral:
		return s.Location
	case s.Content != CertificationGeneral:
		return s.Content
	case s.Filename != CertificationGeneral:
		return s.Filename
	default:
		return CertificationGeneral
	}
}

// matchLocation checks the storage path segments against known codes and
// aliases.
func (c *CertificationClassifier) matchLocation(storageKey string) string {
	if storageKey == "" {
		return CertificationGeneral
	}

	for _, segment := range strings.FieldsFunc(strings.ToLower(storageKey), func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if code := c.matchToken(segment); code != CertificationGeneral {
			return code
		}
	}

	return CertificationGeneral
}

// matchFilename checks filename tokens against codes, exam codes and aliases.
func (c *CertificationClassifier) matchFilename(filename string) string {
	if filename == "" {
		return CertificationGeneral
	}

	if code := c.matchExamCode(filename); code != CertificationGeneral {
		return code
	}

	lower := strings.ToLower(filename)
	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	}) {
		if code := c.matchToken(token); code != CertificationGeneral {
			return code
		}
	}

	// Aliases can span token separators ("solutions-architect-associate")
	for _, cert := range c.catalog {
		for _, alias := range cert.Aliases {
			if strings.Contains(lower, alias) {
				return cert.Code
			}
		}
	}

	return CertificationGeneral
}

// matchContent scans the leading extracted text for official exam codes and
// canonical certification names. Exam codes are the strongest content signal
// and checked first.
func (c *CertificationClassifier) matchContent(leadingText string) string {
	if leadingText == "" {
		return CertificationGeneral
	}

	if len(leadingText) > c.contentLimit {
		leadingText = leadingText[:c.contentLimit]
	}

	if code := c.matchExamCode(leadingText); code != CertificationGeneral {
		return code
	}

	lower := strings.ToLower(leadingText)
	for _, cert := range c.catalog {
		for _, name := range cert.Names {
			if strings.Contains(lower, strings.ToLower(name)) {
				return cert.Code
			}
		}
	}

	return CertificationGeneral
}

func (c *CertificationClassifier) matchExamCode(text string) string {
	match := c.examCodeRe.FindString(text)
	if match == "" {
		return CertificationGeneral
	}

	prefix := strings.ToUpper(match[:3])
	if code, ok := examCodePrefixes[prefix]; ok {
		return code
	}
	return CertificationGeneral
}

// matchToken compares one path/filename token against short codes and
// aliases.
func (c *CertificationClassifier) matchToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return CertificationGeneral
	}

	for _, cert := range c.catalog {
		if strings.EqualFold(token, cert.Code) {
			return cert.Code
		}
		for _, alias := range cert.Aliases {
			if token == alias {
				return cert.Code
			}
		}
	}

	return CertificationGeneral
}
