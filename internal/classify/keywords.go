package classify

import "strings"

// departmentLexicon is the last inference tier before the General default.
// Matched against lowercased "{title} {description}". Security precedes IT
// so security findings that also mention infrastructure terms resolve to
// Security.
var departmentLexicon = []struct {
	name     string
	keywords []string
}{
	{"Security", []string{"security", "cybersecurity", "breach", "vulnerability", "firewall", "password", "access control", "encryption", "intrusion"}},
	{"IT", []string{"server", "software", "network", "database", "system", "hardware", "backup", "technology", "application"}},
	{"HR", []string{"employee", "staff", "recruitment", "training", "payroll", "personnel", "hiring", "leave"}},
	{"Finance", []string{"budget", "financial", "finance", "payment", "invoice", "expenditure", "procurement", "accounting", "revenue"}},
	{"Legal", []string{"legal", "contract", "regulation", "regulatory", "litigation", "compliance"}},
	{"Operations", []string{"operations", "process", "logistics", "maintenance", "facility", "supply chain", "inventory"}},
	{"Administration", []string{"administration", "administrative", "records", "documentation", "filing", "correspondence", "governance"}},
}

// Department infers a department from finding text. Deterministic: the
// first department (declaration order) with a matching keyword wins.
func Department(title, description string) (string, bool) {
	text := strings.ToLower(title + " " + description)
	for _, entry := range departmentLexicon {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.name, true
			}
		}
	}
	return "", false
}
