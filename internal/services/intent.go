package services

import "regexp"

// Intent is the handler selected for one inbound message
type Intent int

const (
	IntentNotUnderstood Intent = iota
	IntentReset
	IntentContactCard
	IntentPreference
	IntentCancel
	IntentDetails
	IntentName
	IntentDifferentWhale
	IntentUnsubscribe
	IntentSubscribe
	IntentSighting
	IntentThanks
	IntentHelp // answered by the carrier's own HELP handling, so nothing is sent
	IntentAdminConfirmation
)

var intentNames = map[Intent]string{
	IntentNotUnderstood:     "not-understood",
	IntentReset:             "reset",
	IntentContactCard:       "contact-card",
	IntentPreference:        "preference",
	IntentCancel:            "cancel",
	IntentDetails:           "details",
	IntentName:              "name",
	IntentDifferentWhale:    "different-whale",
	IntentUnsubscribe:       "unsubscribe",
	IntentSubscribe:         "subscribe",
	IntentSighting:          "sighting",
	IntentThanks:            "thanks",
	IntentHelp:              "help",
	IntentAdminConfirmation: "admin-confirmation",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// Patterns are matched against the lower-cased, trimmed message body
var (
	patternReset           = regexp.MustCompile(`^_reset`)
	patternContactCard     = regexp.MustCompile(`^contactcard`)
	patternWeekend         = regexp.MustCompile(`weekend`)
	patternAnytime         = regexp.MustCompile(`anytime`)
	patternCancel          = regexp.MustCompile(`^(cancel|no|nope|nah|nevermind)\b`)
	patternYes             = regexp.MustCompile(`^(yes|yep|ok|yeah|y)`)
	patternUnsubscribe     = regexp.MustCompile(`^(stop|unsubscribe)`)
	patternSubscribe       = regexp.MustCompile(`^(start|subscribe)`)
	patternSighting        = regexp.MustCompile(`whale`)
	patternMessageReaction = regexp.MustCompile(`^(laughed|emphasized|liked|loved|disliked|questioned)`)
	patternThanks          = regexp.MustCompile(`thank`)
	patternHelp            = regexp.MustCompile(`help`)
)

// Classify picks the handler for a message. Order matters: the first rule
// that matches wins, and mid-flow states shadow the global commands below them.
func Classify(lowerText string, state FlowState, isAdmin bool) Intent {
	midFlow := state == FlowWaitingForDetails || state == FlowWaitingForDifferentWhale || state == FlowWaitingForName

	switch {
	case patternReset.MatchString(lowerText):
		return IntentReset
	case patternContactCard.MatchString(lowerText):
		return IntentContactCard
	case patternWeekend.MatchString(lowerText) || patternAnytime.MatchString(lowerText):
		return IntentPreference
	case midFlow && patternCancel.MatchString(lowerText):
		return IntentCancel
	case state == FlowWaitingForDetails:
		return IntentDetails
	case state == FlowWaitingForName:
		return IntentName
	case state == FlowWaitingForDifferentWhale:
		if patternYes.MatchString(lowerText) {
			return IntentDifferentWhale
		}
		return IntentCancel
	case patternUnsubscribe.MatchString(lowerText):
		return IntentUnsubscribe
	case patternSubscribe.MatchString(lowerText):
		return IntentSubscribe
	case patternSighting.MatchString(lowerText) && !patternMessageReaction.MatchString(lowerText):
		return IntentSighting
	case patternThanks.MatchString(lowerText):
		return IntentThanks
	case patternHelp.MatchString(lowerText):
		return IntentHelp
	case isAdmin:
		return IntentAdminConfirmation
	default:
		return IntentNotUnderstood
	}
}

// looksLikeSubscriptionCommand catches details that are really a stray
// subscribe/unsubscribe text
func looksLikeSubscriptionCommand(lowerText string) bool {
	return patternSubscribe.MatchString(lowerText) || patternUnsubscribe.MatchString(lowerText)
}
