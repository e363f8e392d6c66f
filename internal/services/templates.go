package services

import "fmt"

// Reply is what goes back to the sender of an inbound text.
// An empty Body with no card means nothing is sent.
type Reply struct {
	Body       string
	AttachCard bool // adds a second message carrying the contact card
}

// IsEmpty reports whether the reply has nothing to send
func (r Reply) IsEmpty() bool {
	return r.Body == "" && !r.AttachCard
}

func text(body string) Reply {
	return Reply{Body: body}
}

func withCard(body string) Reply {
	return Reply{Body: body, AttachCard: true}
}

// Fixed reply texts
const (
	TextDidntUnderstand = `The whales didn’t recognize the phrase you just entered.

Reply “whale” to report a sighting in the Stinson/Bolinas area.

Or reply “subscribe” to get alerts when neighbors report whales.`

	TextWelcome = `Welcome to West Marin Whale alerts. You’ll now get a text whenever someone reports a whale in the Stinson/Bolinas area.

To report a whale sighting, text “whale” to this number. We suggest adding this number to your contacts now; we're sending you the contact card.

P.S. If you’re only in West Marin on weekends, reply “weekend” to limit alerts to Sat & Sun. And you can always “unsubscribe.”

More info at www.westmarinwhales.org`

	TextAlreadySubscribed = `Looks like you’re already signed up to get whale alerts. :-)`

	TextSightingDetails = `Exciting!

Where should we tell people to look? For example: “Straight out from The Siren”, or “Near shore in front of the Calles.”`

	TextAskForName = `Last question: what’s your first name so we can credit your sighting?`

	TextSightingConfirmation = `Thank you so much! We’ll spread the word and credit you. It might take up to 5 minutes for everyone to get the text.

Enjoy the whale :-)`

	TextWeekendPreference = `Roger that. If you change your mind, just text "anytime" to this number. Have a nice day!`

	TextAnytimePreference = `You'll now get all local alerts. If you change your mind, just text "weekend" to limit alerts to Sat & Sun.`

	TextCancelSighting = `No problem. Feel free to ping us if you see another whale. :-)`

	TextWantToSubscribe = `P.S. It looks like you’re not signed up to get text messages when other people see whales. Reply "subscribe" if you want alerts.`

	TextUnsubscribeConfirmation = `Got it. You will no longer receive any messages. You can still report a Stinson/Bolinas whale sighting by texting “whale” to this number.`

	TextOffHours = `Our whale watchers are sleeping right now. Please report between 8am and 8pm.`

	TextAdminHeadsUp = "Someone just said whale! be ready to approve or debug"

	TextAdminMessageSent        = "Notified our whale watchers!"
	TextAdminMessageError       = "Something went wrong; maybe the keywords didn't match?"
	TextAdminMessageAlreadySent = "We already notified about this one."

	TextWordFilterMatched = `Oops, the whales didn't like what you wrote. Can you try something else?`

	TextYoureWelcome = `It's our pleasure! Enjoy the whales 🐋🐋`

	TextStateReset  = "State reset"
	TextContactCard = "Add to your address book"
	TextTrouble     = "Sorry, we're having some trouble right now. Please try again in a minute."
)

// TooSoonText tells a reporter that an alert already went out recently
func TooSoonText(ago string) string {
	return fmt.Sprintf("Thanks for reporting a whale! Folks are on the lookout since we sent an alert %s. "+
		"We currently limit alerts to every 4 hours, but please let us know if you see a whale in the future.", ago)
}

// AdminConfirmationText asks an admin to approve a sighting
func AdminConfirmationText(fromName, where, keyword string) string {
	return fmt.Sprintf(`%s reported a whale %s. Notify everyone? Respond with "%s"`, fromName, where, keyword)
}

// SomeoneAlreadyReportedText is sent to the reporter who lost a race
func SomeoneAlreadyReportedText(reporter string) string {
	return fmt.Sprintf(`It looks like you and %s may have reported the same whale at almost the same time.

Currently our system sends out only one alert, but we’re still super grateful for your text!`, reporter)
}

// AlertText is the broadcast sent to subscribers
func AlertText(fromName, details, when string) string {
	return fmt.Sprintf("Ahoy! %s spotted a whale: “%s” (%s)", fromName, details, when)
}
