package issue

// Report is an ordered, append-only collection of issues.
type Report struct {
	issues []Issue
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends a built issue. Issues are never modified once added.
func (r *Report) Add(i Issue) {
	r.issues = append(r.issues, i)
}

// AddBuilt builds the issue with the next ordinal and appends it.
func (r *Report) AddBuilt(b *Builder) Issue {
	i := b.Build(len(r.issues))
	r.Add(i)
	return i
}

// Len returns the number of issues.
func (r *Report) Len() int {
	return len(r.issues)
}

// IsEmpty reports whether the report holds no issues.
func (r *Report) IsEmpty() bool {
	return len(r.issues) == 0
}

// Issues returns a copy of the issues in insertion order.
func (r *Report) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Get returns the issue at index i.
func (r *Report) Get(i int) Issue {
	return r.issues[i]
}

// Filter returns a new report with the issues matching keep, in order.
func (r *Report) Filter(keep func(Issue) bool) *Report {
	out := NewReport()
	for _, i := range r.issues {
		if keep(i) {
			out.Add(i)
		}
	}
	return out
}

// CountBySeverity tallies the issues per severity, SeverityNone included.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, i := range r.issues {
		counts[i.Severity]++
	}
	return counts
}

// Files returns the distinct file names in first-seen order.
func (r *Report) Files() []string {
	seen := make(map[string]struct{})
	var files []string
	for _, i := range r.issues {
		if _, ok := seen[i.FileName]; ok {
			continue
		}
		seen[i.FileName] = struct{}{}
		files = append(files, i.FileName)
	}
	return files
}
