package database

import "github.com/TobiSchelling/domar/internal/court"

// Verdict represents an indexed court verdict.
type Verdict struct {
	ID           int64
	Court        court.Court
	CaseNumber   string
	Filename     string
	TextLength   int
	VerdictURL   *string
	SupersededBy *int64
}

// VerdictText is a verdict together with its full text.
type VerdictText struct {
	Verdict
	Content string
}

// Lawyer holds the aggregate record of one lawyer.
type Lawyer struct {
	ID        int64
	Name      string
	CaseCount int
	Wins      int
	Losses    int
}

// CaseLawyer is one lawyer's appearance in one verdict.
type CaseLawyer struct {
	VerdictID int64
	Name      string
	Role      string
	PartyName *string
	Outcome   string
}

// ChainSummary describes the appeal links currently stored.
type ChainSummary struct {
	Total      int
	ByCourt    map[court.Court]int
	ThreeLevel int
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalVerdicts int
	ByCourt       map[court.Court]int
	WithURL       int
	Superseded    int
	Lawyers       int
	Appearances   int
}
