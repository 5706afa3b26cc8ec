package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	VoterID   int64     `json:"voter_id,omitempty"`
	VoteID    int64     `json:"vote_id,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// Logger records state changes as single-line JSON. Ballot events never
// carry the chosen candidate.
type Logger interface {
	LogRegistration(voterID int64, constituency string)
	LogFaceEnrolled(voterID int64)
	LogApproval(voterID int64)
	LogRejection(voterID int64)
	LogBallotCast(voterID, voteID int64)
	LogVoteDeleted(voteID, voterID int64)
	LogSweep(removed int)
	LogError(operation string, voterID int64, err error)
}

type AuditLogger struct {
	out *log.Logger
}

var _ Logger = (*AuditLogger)(nil)

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{out: log.Default()}
}

// NewAuditLoggerTo writes events to out instead of the default logger.
func NewAuditLoggerTo(out *log.Logger) *AuditLogger {
	return &AuditLogger{out: out}
}

func (a *AuditLogger) LogRegistration(voterID int64, constituency string) {
	a.log(Event{EventType: "REGISTRATION", VoterID: voterID, Status: "PENDING_OTP",
		Details: map[string]string{"constituency": constituency}})
}

func (a *AuditLogger) LogFaceEnrolled(voterID int64) {
	a.log(Event{EventType: "FACE_ENROLLED", VoterID: voterID, Status: "PENDING_APPROVAL"})
}

func (a *AuditLogger) LogApproval(voterID int64) {
	a.log(Event{EventType: "APPROVAL", VoterID: voterID, Status: "SUCCESS"})
}

func (a *AuditLogger) LogRejection(voterID int64) {
	a.log(Event{EventType: "REJECTION", VoterID: voterID, Status: "SUCCESS"})
}

func (a *AuditLogger) LogBallotCast(voterID, voteID int64) {
	a.log(Event{EventType: "BALLOT", VoterID: voterID, VoteID: voteID, Status: "SUCCESS"})
}

func (a *AuditLogger) LogVoteDeleted(voteID, voterID int64) {
	a.log(Event{EventType: "VOTE_DELETED", VoterID: voterID, VoteID: voteID, Status: "SUCCESS"})
}

func (a *AuditLogger) LogSweep(removed int) {
	a.log(Event{EventType: "SWEEP", Status: "SUCCESS", Details: map[string]string{"removed": fmt.Sprint(removed)}})
}

func (a *AuditLogger) LogError(operation string, voterID int64, err error) {
	a.log(Event{EventType: operation, VoterID: voterID, Status: "FAILED",
		Details: map[string]string{"error": err.Error()}})
}

func (a *AuditLogger) log(event Event) {
	event.Timestamp = time.Now()
	data, _ := json.Marshal(event)
	a.out.Printf("AUDIT: %s", string(data))
}
