package messaging

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
)

var (
	// ErrNoPartner means Send was called with no conversation selected.
	ErrNoPartner = errors.New("messaging: no partner selected")
	// ErrSendInFlight means a send for this conversation is still pending.
	ErrSendInFlight = errors.New("messaging: send already in flight")
)

// Link is the realtime connection state consulted by the poll loop.
// realtime.Channel satisfies it.
type Link interface {
	Connected() bool
}

// ViewModel holds one conversation view: the contact list, the selected
// partner, the visible message list and the send-in-flight flag. It
// reconciles three overlapping sources — history fetches, poll refetches and
// push-triggered refetches — plus optimistic local inserts into a single
// ordered list with exactly-once visibility per message id.
type ViewModel struct {
	client       *api.Client
	link         Link
	selfID       int64
	pollInterval time.Duration

	mu         sync.Mutex
	contacts   []models.Contact
	partnerID  int64
	generation uint64
	messages   []models.Message
	sending    bool

	stop chan struct{}
	once sync.Once
}

func NewViewModel(client *api.Client, link Link, selfID int64, pollInterval time.Duration) *ViewModel {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &ViewModel{
		client:       client,
		link:         link,
		selfID:       selfID,
		pollInterval: pollInterval,
		stop:         make(chan struct{}),
	}
}

// RefreshContacts reloads the role-scoped contact list. Unread counts come
// from the server as-is.
func (vm *ViewModel) RefreshContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := vm.client.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	vm.mu.Lock()
	vm.contacts = contacts
	vm.mu.Unlock()
	return contacts, nil
}

func (vm *ViewModel) Contacts() []models.Contact {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]models.Contact, len(vm.contacts))
	copy(out, vm.contacts)
	return out
}

func (vm *ViewModel) Partner() int64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.partnerID
}

// Messages returns the visible list for the active conversation, ordered by
// creation time ascending.
func (vm *ViewModel) Messages() []models.Message {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]models.Message, len(vm.messages))
	copy(out, vm.messages)
	return out
}

func (vm *ViewModel) Sending() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sending
}

// SelectPartner switches the active conversation and fetches its history.
// Switching bumps the fetch generation so a slow response for the previous
// partner cannot land in the new view.
func (vm *ViewModel) SelectPartner(ctx context.Context, partnerID int64) error {
	vm.mu.Lock()
	vm.partnerID = partnerID
	vm.generation++
	vm.messages = nil
	vm.mu.Unlock()

	return vm.Refetch(ctx)
}

// Refetch reloads the active conversation and makes the result authoritative
// for ordering. Local messages the server has not returned yet (a confirmed
// optimistic send racing a poll) are kept, merged by id.
func (vm *ViewModel) Refetch(ctx context.Context) error {
	vm.mu.Lock()
	partner := vm.partnerID
	gen := vm.generation
	vm.mu.Unlock()
	if partner == 0 {
		return nil
	}

	fetched, err := vm.client.Messages(ctx, partner)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.generation != gen || vm.partnerID != partner {
		// Stale completion for a conversation no longer on screen.
		log.Debug().Int64("partner", partner).Msg("discarding stale message fetch")
		return nil
	}
	vm.messages = mergeByID(fetched, vm.messages, vm.selfID, partner)
	return nil
}

// Send posts a message to the active partner. It refuses immediately without
// a partner and while another send is pending. On success the confirmed
// message becomes visible at once and a reconciling refetch follows; on
// failure the caller keeps the typed text and may retry.
func (vm *ViewModel) Send(ctx context.Context, body, attachment string) error {
	vm.mu.Lock()
	partner := vm.partnerID
	if partner == 0 {
		vm.mu.Unlock()
		return ErrNoPartner
	}
	if vm.sending {
		vm.mu.Unlock()
		return ErrSendInFlight
	}
	vm.sending = true
	gen := vm.generation
	vm.mu.Unlock()

	confirmed, err := vm.client.SendMessage(ctx, partner, body, attachment)

	vm.mu.Lock()
	vm.sending = false
	if err == nil && confirmed != nil && vm.generation == gen {
		vm.messages = mergeByID(vm.messages, []models.Message{*confirmed}, vm.selfID, partner)
	}
	vm.mu.Unlock()

	if err != nil {
		return err
	}
	// Reconcile with server-side ordering and read state.
	if refetchErr := vm.Refetch(ctx); refetchErr != nil {
		log.Debug().Err(refetchErr).Msg("post-send refetch failed")
	}
	return nil
}

// HandlePush is the realtime channel's dispatch target. A push for the active
// conversation triggers an immediate refetch rather than a direct merge, so
// the server stays authoritative for ordering and read state.
func (vm *ViewModel) HandlePush(msg models.Message) {
	vm.mu.Lock()
	partner := vm.partnerID
	vm.mu.Unlock()
	if partner == 0 || !msg.Between(vm.selfID, partner) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), vm.pollInterval)
	defer cancel()
	if err := vm.Refetch(ctx); err != nil {
		log.Debug().Err(err).Msg("push-triggered refetch failed")
	}
}

// Start runs the fallback poll loop until Stop. Polling is suspended while
// the realtime link reports connected and resumes within one interval of it
// dropping, including before the first connection attempt completes.
func (vm *ViewModel) Start() {
	go func() {
		ticker := time.NewTicker(vm.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-vm.stop:
				return
			case <-ticker.C:
				if vm.link != nil && vm.link.Connected() {
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), vm.pollInterval)
				if err := vm.Refetch(ctx); err != nil {
					log.Debug().Err(err).Msg("poll refetch failed")
				}
				cancel()
			}
		}
	}()
}

func (vm *ViewModel) Stop() {
	vm.once.Do(func() { close(vm.stop) })
}

// mergeByID folds extra into base keeping exactly one message per id. base is
// the authoritative source for ordering; extras the server has not confirmed
// into base yet are appended and the result re-sorted by creation time.
// Messages outside the {self, partner} pair are dropped.
func mergeByID(base, extra []models.Message, selfID, partnerID int64) []models.Message {
	seen := make(map[string]struct{}, len(base))
	out := make([]models.Message, 0, len(base)+len(extra))
	for _, m := range base {
		if !m.Between(selfID, partnerID) {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range extra {
		if !m.Between(selfID, partnerID) {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
