package newsletter

import "time"

// Preferences choose which mailings a subscriber receives.
type Preferences struct {
	CourseUpdates bool `json:"courseUpdates"`
	Promotions    bool `json:"promotions"`
	Newsletters   bool `json:"newsletters"`
}

// DefaultPreferences opts a new subscriber into everything.
func DefaultPreferences() Preferences {
	return Preferences{CourseUpdates: true, Promotions: true, Newsletters: true}
}

type Subscription struct {
	Email        string      `json:"email"`
	Preferences  Preferences `json:"preferences"`
	Active       bool        `json:"active"`
	SubscribedAt time.Time   `json:"subscribedAt"`
}

// Repo stores subscriptions keyed by normalised email.
type Repo interface {
	Subscribe(email string, prefs *Preferences, at time.Time) (*Subscription, error)
	Unsubscribe(email string) error
	UpdatePreferences(email string, prefs Preferences) (*Subscription, error)
	Get(email string) (*Subscription, error)
}
