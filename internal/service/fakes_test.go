package service

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/ledger"
	"github.com/spec-kit/talent-ledger/internal/repository"
)

type fakeActors struct {
	byAuth map[string]*domain.Actor
}

func newFakeActors(actors ...domain.Actor) *fakeActors {
	f := &fakeActors{byAuth: make(map[string]*domain.Actor)}
	for i := range actors {
		a := actors[i]
		f.byAuth[a.AuthUserID] = &a
	}
	return f
}

func (f *fakeActors) GetByAuthUserID(_ context.Context, authUserID string) (*domain.Actor, error) {
	a, ok := f.byAuth[authUserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeActors) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	for _, a := range f.byAuth {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// memoryCalls and memoryTransactions read straight from the ledger stand-in.
type memoryCalls struct{ ledger *ledger.Memory }

func (m memoryCalls) GetByID(_ context.Context, id string) (*domain.CallSession, error) {
	c, ok := m.ledger.Call(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type memoryTransactions struct{ ledger *ledger.Memory }

func (m memoryTransactions) ListByActor(_ context.Context, actorID string, limit, offset int) ([]domain.CoinTransaction, error) {
	all := m.ledger.Transactions(actorID)
	if offset >= len(all) {
		return []domain.CoinTransaction{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type fakeGigs struct {
	mu          sync.Mutex
	gigs        map[string]domain.Gig
	invitations map[string]*domain.GigInvitation
}

func newFakeGigs(gigs ...domain.Gig) *fakeGigs {
	f := &fakeGigs{gigs: make(map[string]domain.Gig), invitations: make(map[string]*domain.GigInvitation)}
	for _, g := range gigs {
		f.gigs[g.ID] = g
	}
	return f
}

func invitationKey(gigID, modelProfileID string) string { return gigID + "|" + modelProfileID }

func (f *fakeGigs) GetByID(_ context.Context, id string) (*domain.Gig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gigs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (f *fakeGigs) Invite(_ context.Context, gigID, modelProfileID string) (*domain.GigInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := invitationKey(gigID, modelProfileID)
	if inv, ok := f.invitations[key]; ok {
		cp := *inv
		return &cp, nil
	}
	inv := &domain.GigInvitation{GigID: gigID, ModelProfileID: modelProfileID, Status: domain.InvitationStatusInvited, InvitedAt: time.Now()}
	f.invitations[key] = inv
	cp := *inv
	return &cp, nil
}

func (f *fakeGigs) AcceptInvitation(_ context.Context, gigID, modelProfileID string) (*domain.GigInvitation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[invitationKey(gigID, modelProfileID)]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	changed := false
	if inv.Status == domain.InvitationStatusInvited {
		now := time.Now()
		inv.Status = domain.InvitationStatusAccepted
		inv.RespondedAt = &now
		changed = true
	}
	cp := *inv
	return &cp, changed, nil
}

func (f *fakeGigs) setStatus(gigID, modelProfileID string, status domain.InvitationStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations[invitationKey(gigID, modelProfileID)].Status = status
}
