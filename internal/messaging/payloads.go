package messaging

// PayloadKind discriminates the payload union.
type PayloadKind int

const (
	KindSessionStart PayloadKind = iota
	KindStudentText
	KindKnowledgeLookup
	KindKnowledgeLookupReply
	KindAssessmentAnalysis
	KindAssessmentAnalysisReply
	KindStudentOutbound
)

// String returns a stable name for logging.
func (k PayloadKind) String() string {
	switch k {
	case KindSessionStart:
		return "session_start"
	case KindStudentText:
		return "student_text"
	case KindKnowledgeLookup:
		return "knowledge_lookup"
	case KindKnowledgeLookupReply:
		return "knowledge_lookup_reply"
	case KindAssessmentAnalysis:
		return "assessment_analysis"
	case KindAssessmentAnalysisReply:
		return "assessment_analysis_reply"
	case KindStudentOutbound:
		return "student_outbound"
	default:
		return "unknown"
	}
}

// Payload is the closed union of message bodies carried by the bus.
// Handlers dispatch on the concrete type, never on string prefixes.
type Payload interface {
	Kind() PayloadKind
}

// SessionStart signals first contact from a learner identity.
type SessionStart struct {
	Identity string
}

// Kind implements Payload.
func (SessionStart) Kind() PayloadKind { return KindSessionStart }

// StudentText is free-form learner input: a menu choice, a Subject:Level
// pair, an answer, a challenge description, or a directive.
type StudentText struct {
	Identity string
	Text     string
}

// Kind implements Payload.
func (StudentText) Kind() PayloadKind { return KindStudentText }

// KnowledgeLookup asks the Knowledge Service for curriculum content.
// Identity is a routing hint echoed back in the reply; the collaborator
// attaches no correlation id of its own.
type KnowledgeLookup struct {
	Identity string
	Subject  string
	Level    string
}

// Kind implements Payload.
func (KnowledgeLookup) Kind() PayloadKind { return KindKnowledgeLookup }

// KnowledgeLookupReply carries curriculum content, or Found=false when the
// service has nothing for the pair.
type KnowledgeLookupReply struct {
	Identity    string
	Subject     string
	Level       string
	Topic       string
	Question    string
	Answer      string
	Explanation string
	Found       bool
}

// Kind implements Payload.
func (KnowledgeLookupReply) Kind() PayloadKind { return KindKnowledgeLookupReply }

// AssessmentAnalysis forwards a learner's self-reported challenges for
// subject/level recommendation.
type AssessmentAnalysis struct {
	Identity      string
	ChallengeText string
}

// Kind implements Payload.
func (AssessmentAnalysis) Kind() PayloadKind { return KindAssessmentAnalysis }

// AssessmentAnalysisReply is the recommendation derived from challenge text.
type AssessmentAnalysisReply struct {
	Identity  string
	Subject   string
	Level     string
	Rationale string
}

// Kind implements Payload.
func (AssessmentAnalysisReply) Kind() PayloadKind { return KindAssessmentAnalysisReply }

// OutboundCategory classifies a message to the learner so the relay layer
// can render it appropriately.
type OutboundCategory string

const (
	OutboundNotice         OutboundCategory = "notice"
	OutboundMenu           OutboundCategory = "menu"
	OutboundQuestion       OutboundCategory = "question"
	OutboundFeedback       OutboundCategory = "feedback"
	OutboundRecommendation OutboundCategory = "recommendation"
	OutboundHistory        OutboundCategory = "history"
	OutboundError          OutboundCategory = "error"
)

// StudentOutbound is a message from the tutor to one learner.
type StudentOutbound struct {
	Identity string
	Category OutboundCategory
	Text     string
}

// Kind implements Payload.
func (StudentOutbound) Kind() PayloadKind { return KindStudentOutbound }
