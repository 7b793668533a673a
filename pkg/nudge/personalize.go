package nudge

var personalizedMessages = map[MissingSignal]string{
	MissingAudience:      "Brands want to know who follows you. Add your audience insights so they can see the fit.",
	MissingActivity:      "Brands look for a steady posting rhythm. Share something new this week to stay on their radar.",
	MissingCollabSetup:   "Let brands know you're open for work. Set your availability and collaboration preferences.",
	MissingCampaignReady: "Make it easy for brands to say yes. Upload a media kit or past campaign results.",
}

// personalize returns rule with its message swapped for the copy matching
// the missing signal. Unknown or absent signals keep the default message.
func personalize(rule NudgeRule, signal MissingSignal) NudgeRule {
	out := rule.clone()
	if msg, ok := personalizedMessages[signal]; ok {
		out.Message = msg
	}
	return out
}
