package service

// Dependencies holds all stores and senders that processors, actions and the
// pipeline can use. Components receive this struct and take only what they need.
type Dependencies struct {
	StateStore     StateStore
	HistoryStore   HistoryStore
	ChannelTracker ChannelTracker
	Scheduler      Scheduler
	Lock           CreatorLock
	Inbox          InboxWriter
	WhatsApp       WhatsAppSender
}

// NewDependencies creates a new dependencies container.
// Services can be nil if not needed - components should handle nil gracefully.
func NewDependencies() *Dependencies {
	return &Dependencies{}
}

func (d *Dependencies) WithStateStore(s StateStore) *Dependencies {
	d.StateStore = s
	return d
}

func (d *Dependencies) WithHistoryStore(s HistoryStore) *Dependencies {
	d.HistoryStore = s
	return d
}

func (d *Dependencies) WithChannelTracker(s ChannelTracker) *Dependencies {
	d.ChannelTracker = s
	return d
}

func (d *Dependencies) WithScheduler(s Scheduler) *Dependencies {
	d.Scheduler = s
	return d
}

func (d *Dependencies) WithLock(l CreatorLock) *Dependencies {
	d.Lock = l
	return d
}

func (d *Dependencies) WithInbox(s InboxWriter) *Dependencies {
	d.Inbox = s
	return d
}

func (d *Dependencies) WithWhatsApp(s WhatsAppSender) *Dependencies {
	d.WhatsApp = s
	return d
}
