package moderation

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"resty.dev/v3"

	"github.com/haven-community/haven/utils"
)

// SafetyNotice is appended to content that matches the self-harm phrase
// set. Self-harm expression is never hidden, only supplemented.
const SafetyNotice = "\n\n[Note: If you're experiencing thoughts of self-harm, please reach out for help. Resources are available at the National Suicide Prevention Lifeline: 1-800-273-8255]"

// The lexical self-harm signal is checked locally, independent of the
// external classifier, so it still fires when the classifier is down.
var selfHarmPhrases = []string{
	"want to die",
	"kill myself",
	"end my life",
	"suicide",
	"hurt myself",
	"self harm",
}

// Verdict is the transient result of screening one submission.
type Verdict struct {
	Blocked    bool     `json:"blocked"`
	Score      float64  `json:"score"`
	Flagged    []string `json:"flagged_categories,omitempty"`
	SelfHarm   bool     `json:"self_harm"`
	GateFailed bool     `json:"-"`
}

// Gate screens text before it is persisted, delegating scoring to an
// external classifier. When the classifier is unreachable the gate fails
// open and the event is recorded for review.
type Gate struct {
	client    *resty.Client
	url       string
	threshold float64
}

// NewGate builds a Gate for the given classifier endpoint. The timeout
// bounds the whole screening call; writes must not hang on moderation.
func NewGate(url string, threshold float64, timeout time.Duration) *Gate {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Gate{client: client, url: url, threshold: threshold}
}

// Close releases the underlying HTTP client.
func (g *Gate) Close() error {
	return g.client.Close()
}

type classifierResponse struct {
	Probability *float64           `json:"probability"`
	Score       *float64           `json:"score"`
	Categories  map[string]float64 `json:"categories"`
}

// Screen classifies the text. The same contract applies to posts and
// comments. Never returns an error: classifier failures degrade to a
// non-blocking verdict with GateFailed set.
func (g *Gate) Screen(ctx context.Context, text string) Verdict {
	verdict := Verdict{SelfHarm: containsSelfHarm(text)}

	resp, err := g.client.R().
		WithContext(ctx).
		SetBody(map[string]string{"message": text}).
		Post(g.url)

	switch {
	case err != nil:
		return g.failOpen(verdict, "classifier unreachable: "+err.Error())
	case resp.IsError():
		return g.failOpen(verdict, "classifier returned "+resp.Status())
	}

	// Decode the body ourselves: some scorers answer without a JSON
	// content type, and that must not degrade into a skipped screening.
	var body classifierResponse
	if err := json.Unmarshal(resp.Bytes(), &body); err != nil {
		return g.failOpen(verdict, "classifier response unparsable: "+err.Error())
	}

	score, ok := lo.Coalesce(body.Probability, body.Score)
	if !ok {
		return g.failOpen(verdict, "classifier response missing score")
	}

	verdict.Score = *score
	verdict.Flagged = flaggedCategories(body.Categories, g.threshold)
	verdict.Blocked = verdict.Score >= g.threshold
	if verdict.SelfHarm {
		// Explicit exception to the block policy: supplement, don't hide.
		verdict.Blocked = false
	}
	if verdict.Blocked {
		utils.ModerationBlocked.Inc()
	}
	return verdict
}

// Annotate returns the text to persist for the given verdict.
func Annotate(text string, v Verdict) string {
	if v.SelfHarm {
		return text + SafetyNotice
	}
	return text
}

// failOpen records the gate failure and lets the write proceed.
func (g *Gate) failOpen(v Verdict, reason string) Verdict {
	eventID := uuid.NewString()
	utils.ModerationGateFailures.Inc()
	utils.Sugar.Warnw("moderation gate failure, failing open",
		"event_id", eventID,
		"reason", reason,
	)
	v.GateFailed = true
	return v
}

func containsSelfHarm(text string) bool {
	lower := strings.ToLower(text)
	return lo.SomeBy(selfHarmPhrases, func(p string) bool { return strings.Contains(lower, p) })
}

func flaggedCategories(categories map[string]float64, threshold float64) []string {
	flagged := lo.Keys(lo.PickBy(categories, func(_ string, score float64) bool {
		return score >= threshold
	}))
	sort.Strings(flagged)
	if len(flagged) == 0 {
		return nil
	}
	return flagged
}
