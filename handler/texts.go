package handler

// User-facing copy for both registration flows and the admin surface.

const (
	labelAccelerator = "Accelerator programme"
	labelEvents      = "Startup studio events"

	textWelcome    = "Hi! This bot registers you for the startup studio's programmes.\n\nSupport contact: %s"
	textChooseFlow = "Choose what you want to register for:"
	textPressStart = "To start registration, press /start"

	textAccStart = "Accelerator registration.\nEnter your full name:"
	textEvStart  = "Event registration.\nEnter your full name:"

	textAskProject     = "Project name:"
	textAskEmail       = "Email address:"
	textBadEmail       = "That doesn't look like a valid email. Enter it again:"
	textAskContact     = "Your Telegram contact (@username or phone number):"
	textBadContact     = "Enter @username or a phone number:"
	textAskTrack       = "Project track:"
	textWrongTrack     = "Pick a track with the buttons below."
	textAskStage       = "Project stage:"
	textWrongStage     = "Pick a stage with the buttons below."
	textAskDescription = "Short project description:"
	textAskPitch       = "Would you like to present at a pitch session?"
	textWrongPitch     = "Pick an option with the buttons below."
	textAskURL         = "Send a link to your presentation (URL):"
	textBadURL         = "Enter a valid link (http:// or https://):"
	textAskTeam        = "Team members' names and roles:"

	textAskAffiliation   = "Are you affiliated with the university?"
	textAskAffiliationEv = "Are you affiliated with the university? (needed to order guest passes)"
	textWrongYesNo       = "Choose Yes or No with the buttons below."

	textAskProgram  = "Your degree programme (graduates: the programme on your diploma):"
	textAskQuestion = "Your question for the speakers or organisers (send \"-\" to skip):"

	textConsent      = "I confirm that I have read the personal data processing policy, am entitled to provide my personal data and consent to its processing.\n\nPolicy: %s"
	textWrongConsent = "Press \"I have read it\" under the message above."

	textWrongConfirm = "Press \"✅ Confirm\" or \"✏️ Start over\" under the summary."
	textRestartName  = "Enter your full name again:"

	textSaved      = "Your registration for %s is complete. 🎉\n\nTo register again or for the other programme, press /start"
	textSaveFailed = "Couldn't save your registration. Please try again later or press /start."

	textNoPermission    = "You don't have permission to do that."
	textChooseAudience  = "Choose the broadcast audience:"
	textWrongAudience   = "Use the buttons above to choose the audience."
	textEnterBroadcast  = "Enter the broadcast text:"
	textBroadcastOff    = "Broadcast cancelled."
	textEmptyAudience   = "No registered users in the selected audience."
	textAudienceFailed  = "Couldn't read the registration lists. Try again later."
	textBroadcastDone   = "Broadcast finished.\n\n✅ Delivered: %d, failed: %d\nTo retract it for everyone, reply to this message with /delete."
	textDeleteUsage     = "Reply to the broadcast message you want to retract."
	textNotBroadcast    = "That's not a broadcast message."
	textRecallDone      = "Deleted: %d, failed: %d"
	textAdminNewRecord  = "New registration (%s)\n\nName: %s\nContact: %s"
	textConfirmQuestion = "Is everything correct?"
)

type choice struct {
	data  string
	label string
}

var trackChoices = []choice{
	{"tr:urban", "Urban & TravelTech"},
	{"tr:clean", "Clean & AgroTech"},
	{"tr:good", "Tech for Good"},
	{"tr:other", "Other"},
}

var stageChoices = []choice{
	{"st:idea", "Idea"},
	{"st:mvp", "MVP"},
	{"st:sales", "Sales"},
}

var pitchChoices = []choice{
	{"pz:yes", "Yes"},
	{"pz:no", "No"},
	{"pz:maybe", "Maybe"},
}

func labelFor(choices []choice, data string) (string, bool) {
	for _, c := range choices {
		if c.data == data {
			return c.label, true
		}
	}
	return "", false
}
