package services

// Fingerprint identifies a candidate file for duplicate detection. Content
// is never hashed; two files with the same name and size are duplicates.
type Fingerprint struct {
	Name string
	Size int64
}

// DuplicateReport flags every item whose fingerprint occurs more than once
type DuplicateReport struct {
	Flags []bool
	Count int
}

// DetectDuplicates marks all occurrences of any repeated fingerprint, not
// only the later ones. Count is the number of flagged items.
func DetectDuplicates(prints []Fingerprint) DuplicateReport {
	firstSeen := make(map[Fingerprint]int, len(prints))
	report := DuplicateReport{Flags: make([]bool, len(prints))}

	for i, fp := range prints {
		first, seen := firstSeen[fp]
		if !seen {
			firstSeen[fp] = i
			continue
		}
		report.Flags[i] = true
		report.Flags[first] = true
	}

	for _, dup := range report.Flags {
		if dup {
			report.Count++
		}
	}
	return report
}
