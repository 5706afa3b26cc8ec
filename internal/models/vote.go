package models

import "time"

type Vote struct {
	ID        int64     `json:"id"`
	VoterID   int64     `json:"voterId"`
	VoterName string    `json:"voterName,omitempty"`
	Candidate string    `json:"candidate"`
	CastAt    time.Time `json:"castAt"`
}

// Tally is the per-candidate count shown on the admin dashboard.
type Tally struct {
	Candidate Candidate `json:"candidate"`
	Votes     int       `json:"votes"`
}
