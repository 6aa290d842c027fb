package rules

// DefaultRules returns the built-in rule set. Tier ordering is encoded in both
// priority and confidence: sensitivity markers, then technical keyword sets,
// then generic domain keyword pairs.
func DefaultRules() []Rule {
	return []Rule{
		// Sensitivity markers - highest priority
		{
			Name:       "Sensitivity Markers",
			Regex:      `\b(confidential|secret|private|restricted|classified|do\s*not\s*distribute)\b`,
			Path:       []string{"Sensitive"},
			Priority:   100,
			Confidence: SensitivityConfidence,
		},
		{
			Name:       "Personal Data Markers",
			Regex:      `\b(ssn|social\s*security|passport\s*number|date\s*of\s*birth)\b`,
			Path:       []string{"Sensitive", "Personal Data"},
			Priority:   95,
			Confidence: SensitivityConfidence,
		},

		// Technical keyword sets
		{
			Name:       "Machine Learning",
			Regex:      `\b(neural\s*network|transformer|embedding|fine.?tuning|gradient\s*descent)\b`,
			Path:       []string{"Technology", "AI", "Machine Learning"},
			Priority:   80,
			Confidence: TechnicalConfidence,
		},
		{
			Name:       "Cloud Infrastructure",
			Regex:      `\b(kubernetes|docker|terraform|load\s*balancer|auto.?scaling)\b`,
			Path:       []string{"Technology", "Infrastructure"},
			Priority:   78,
			Confidence: TechnicalConfidence,
		},
		{
			Name:       "Source Code",
			Regex:      `\b(func\s+\w+\(|def\s+\w+\(|public\s+class|#include\s*<)`,
			Path:       []string{"Technology", "Source Code"},
			Priority:   76,
			Confidence: TechnicalConfidence,
		},
		{
			Name:       "Structured Data Format",
			Regex:      `\b(csv|json\s*schema|xml\s*document|parquet)\b`,
			Path:       []string{"Technology", "Data Formats"},
			Priority:   74,
			Confidence: TechnicalConfidence,
		},

		// Generic domain keyword pairs - both terms must appear
		{
			Name:       "Financial Reporting",
			AllOf:      []string{"invoice", "payment"},
			Path:       []string{"Business", "Finance"},
			Priority:   60,
			Confidence: DomainPairConfidence,
		},
		{
			Name:       "Clinical Notes",
			AllOf:      []string{"patient", "diagnosis"},
			Path:       []string{"Healthcare", "Clinical"},
			Priority:   58,
			Confidence: DomainPairConfidence,
		},
		{
			Name:       "Legal Agreements",
			AllOf:      []string{"contract", "liability"},
			Path:       []string{"Legal", "Contracts"},
			Priority:   56,
			Confidence: DomainPairConfidence,
		},
		{
			Name:       "Hiring Material",
			AllOf:      []string{"candidate", "interview"},
			Path:       []string{"Business", "Recruiting"},
			Priority:   54,
			Confidence: DomainPairConfidence,
		},
	}
}
