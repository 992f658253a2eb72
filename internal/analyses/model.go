package analyses

import "time"

// Detail is one assessment of a resume, either produced by the model or by the heuristic scorer.
// When OK is false the structured fields are empty and Raw carries the unparsed model output.
type Detail struct {
	Score     int            `json:"score"`
	Strengths []string       `json:"strengths"`
	Problems  []string       `json:"problems"`
	Actions   []string       `json:"actions"`
	Sections  map[string]int `json:"sections"`
	OK        bool           `json:"ok"`
	Raw       string         `json:"raw"`
	Prompt    string         `json:"prompt"`
}

// Failed builds a Detail for a response that could not be parsed.
func Failed(raw, prompt string) Detail {
	return Detail{OK: false, Raw: raw, Prompt: prompt}
}

// Record is an append-only analysis entry owned by a user.
type Record struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	SourceRefs []string  `json:"sourceRefs"`
	Details    []Detail  `json:"details"`
	Mode       string    `json:"mode"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	ModeFull      = "full"
	ModeScoreOnly = "score_only"
)

// Primary returns the first detail of the record, which is the delivered report.
func (r Record) Primary() (Detail, bool) {
	if len(r.Details) == 0 {
		return Detail{}, false
	}
	return r.Details[0], true
}

// FileCheck records a document rejected by the validity classifier.
type FileCheck struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	StorageRef string    `json:"storageRef"`
	Kind       string    `json:"kind"`
	Valid      bool      `json:"valid"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
