package ai

import (
	"context"
	"log"
	"strings"
)

// ReplyError stands in for the model reply when the classification call itself failed.
const ReplyError = "ERROR_GEMINI"

// Reply tokens the model is instructed to answer with.
const (
	tokenNoWorker = "NO_WORKER"
	tokenOK       = "PPE_OK"
	tokenMissing  = "PPE_MISSING:"
)

// Outcome is the three-way result of a frame check.
type Outcome string

const (
	OutcomeRetry   Outcome = "RETRY"
	OutcomePresent Outcome = "PRESENT"
	OutcomeAbsent  Outcome = "ABSENT"
)

// Verdict is a parsed model reply.
type Verdict struct {
	Outcome Outcome
	Missing string // items reported missing, only for OutcomeAbsent
	Reason  string // human readable explanation for OutcomeRetry
}

// Verify classifies a frame once and normalises the reply (trimmed, upper case).
// A failed call is logged and reported as ReplyError instead of an error.
func Verify(ctx context.Context, c Classifier, jpeg []byte) string {
	reply, err := c.Classify(ctx, jpeg)
	if err != nil {
		log.Printf("PPE classification via %s failed: %v", c.Name(), err)
		return ReplyError
	}
	return strings.ToUpper(strings.TrimSpace(reply))
}

// ParseReply maps a normalised reply to a Verdict. Matching is by substring, so replies
// wrapped in extra prose still resolve; anything unrecognised counts as a failed check.
func ParseReply(reply string) Verdict {
	switch {
	case reply == ReplyError:
		return Verdict{Outcome: OutcomeRetry, Reason: "Verification unavailable, please try again"}
	case strings.Contains(reply, tokenNoWorker):
		return Verdict{Outcome: OutcomeRetry, Reason: "Worker not detected"}
	case strings.Contains(reply, tokenOK):
		return Verdict{Outcome: OutcomePresent}
	default:
		return Verdict{
			Outcome: OutcomeAbsent,
			Missing: strings.TrimSpace(strings.ReplaceAll(reply, tokenMissing, "")),
		}
	}
}
