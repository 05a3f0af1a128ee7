package fakenewsletterrepo

import (
	"sync"
	"time"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/internal/utils"
	"github.com/jrsteele09/go-campus/newsletter"
	"github.com/jrsteele09/go-campus/users"
)

var _ newsletter.Repo = (*FakeNewsletterRepo)(nil)

type FakeNewsletterRepo struct {
	mu   sync.RWMutex
	subs map[string]newsletter.Subscription
}

func NewFakeNewsletterRepo() *FakeNewsletterRepo {
	return &FakeNewsletterRepo{subs: make(map[string]newsletter.Subscription)}
}

// Subscribe reactivates an existing subscription. nil prefs keep what was there, or the defaults.
func (r *FakeNewsletterRepo) Subscribe(email string, prefs *newsletter.Preferences, at time.Time) (*newsletter.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := users.NormaliseEmail(email)
	sub, ok := r.subs[key]
	if !ok {
		sub = newsletter.Subscription{Email: key, Preferences: newsletter.DefaultPreferences(), SubscribedAt: at}
	}
	sub.Preferences = utils.ValueOr(prefs, sub.Preferences)
	if !sub.Active && ok {
		sub.SubscribedAt = at
	}
	sub.Active = true
	r.subs[key] = sub
	return &sub, nil
}

func (r *FakeNewsletterRepo) Unsubscribe(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := users.NormaliseEmail(email)
	sub, ok := r.subs[key]
	if !ok || !sub.Active {
		return campuserrors.ErrNotFound
	}
	sub.Active = false
	r.subs[key] = sub
	return nil
}

func (r *FakeNewsletterRepo) UpdatePreferences(email string, prefs newsletter.Preferences) (*newsletter.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := users.NormaliseEmail(email)
	sub, ok := r.subs[key]
	if !ok || !sub.Active {
		return nil, campuserrors.ErrNotFound
	}
	sub.Preferences = prefs
	r.subs[key] = sub
	return &sub, nil
}

func (r *FakeNewsletterRepo) Get(email string) (*newsletter.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[users.NormaliseEmail(email)]
	if !ok {
		return nil, campuserrors.ErrNotFound
	}
	return &sub, nil
}
