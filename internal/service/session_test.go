package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/live"
	"github.com/msomdec/task-tracker/internal/service"
)

var (
	coordinator = &domain.User{ID: "c1", Email: "coord@ieee.org", Name: "Coord", Role: domain.RoleCoordinator}
	member      = &domain.User{ID: "m1", Email: "member@ieee.org", Name: "Member", Role: domain.RoleMember}
)

const tab = "tab-1"

func TestSession_LoginIdempotent(t *testing.T) {
	s := service.NewSession()
	s.Login(member)

	sub := live.New(nil)
	if err := s.Attach(tab, sub); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	s.Login(member)
	if s.Subscription(tab) != sub {
		t.Fatal("logging in as the same identity must keep the subscription")
	}
	if got := s.User(); got == nil || got.ID != member.ID {
		t.Fatalf("unexpected user %+v", got)
	}

	s.Login(coordinator)
	if !sub.Closed() {
		t.Fatal("switching identity must release the subscription")
	}
	if s.User().ID != coordinator.ID {
		t.Fatal("expected coordinator identity")
	}
}

func TestSession_AttachCancelsPrevious(t *testing.T) {
	s := service.NewSession()
	s.Login(coordinator)

	first, second := live.New(nil), live.New(nil)
	s.Attach(tab, first)
	s.Attach(tab, second)

	if !first.Closed() {
		t.Fatal("expected previous subscription to be cancelled")
	}
	if second.Closed() {
		t.Fatal("expected new subscription to stay open")
	}
}

func TestSession_TabsKeepTheirOwnSubscription(t *testing.T) {
	s := service.NewSession()
	s.Login(coordinator)

	first, second := live.New(nil), live.New(nil)
	s.Attach("tab-a", first)
	s.Attach("tab-b", second)

	if first.Closed() || second.Closed() {
		t.Fatal("a second tab must not release the first tab's subscription")
	}
	if s.Subscription("tab-a") != first || s.Subscription("tab-b") != second {
		t.Fatal("expected each tab to keep its subscription")
	}
	if n := s.Subscriptions(); n != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", n)
	}

	s.Release("tab-a", first)
	if s.Subscription("tab-a") != nil || s.Subscription("tab-b") != second {
		t.Fatal("releasing one tab must leave the other untouched")
	}

	s.Logout()
	if !second.Closed() || s.Subscriptions() != 0 {
		t.Fatal("logout must release every tab")
	}
}

func TestSession_LogoutReleasesSubscription(t *testing.T) {
	s := service.NewSession()
	s.Login(member)
	sub := live.New(nil)
	s.Attach(tab, sub)

	s.Logout()
	s.Logout()

	if s.User() != nil {
		t.Fatal("expected no identity after logout")
	}
	if !sub.Closed() {
		t.Fatal("expected subscription to be released")
	}
}

func TestSession_AttachRequiresIdentity(t *testing.T) {
	s := service.NewSession()
	sub := live.New(nil)

	if err := s.Attach(tab, sub); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !sub.Closed() {
		t.Fatal("refused subscription must be released")
	}
}

func TestSession_ReleaseOnlyClearsCurrent(t *testing.T) {
	s := service.NewSession()
	s.Login(member)
	old, current := live.New(nil), live.New(nil)
	s.Attach(tab, old)
	s.Attach(tab, current)

	s.Release(tab, old)
	if s.Subscription(tab) != current {
		t.Fatal("releasing a stale subscription must not clear the current one")
	}
	s.Release(tab, current)
	if s.Subscription(tab) != nil {
		t.Fatal("expected no active subscription")
	}
}

func TestSessionRegistry(t *testing.T) {
	r := service.NewSessionRegistry()

	a := r.Get("a")
	if r.Get("a") != a {
		t.Fatal("expected the same session for the same id")
	}
	a.Login(member)
	sub := live.New(nil)
	a.Attach(tab, sub)

	r.Drop("a")
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
	if a.User() != nil || !sub.Closed() {
		t.Fatal("dropping a session must log it out")
	}

	r.Get("idle")
	busy := r.Get("busy")
	busy.Login(member)
	busy.Attach(tab, live.New(nil))

	time.Sleep(5 * time.Millisecond)
	if n := r.Prune(time.Millisecond); n != 1 {
		t.Fatalf("expected 1 pruned session, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected the subscribed session to survive, got %d sessions", r.Len())
	}
}

func TestSessionRegistry_ReleaseAll(t *testing.T) {
	r := service.NewSessionRegistry()
	a, b := r.Get("a"), r.Get("b")
	a.Login(coordinator)
	b.Login(member)
	subA, subB := live.New(nil), live.New(nil)
	a.Attach(tab, subA)
	b.Attach("tab-2", subB)

	r.ReleaseAll()

	if !subA.Closed() || !subB.Closed() {
		t.Fatal("expected every subscription to be released")
	}
	if a.Subscriptions() != 0 || b.Subscriptions() != 0 {
		t.Fatal("expected no tracked subscriptions")
	}
	if a.User() == nil || b.User() == nil {
		t.Fatal("releasing subscriptions must keep identities")
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		want service.View
	}{
		{"anonymous", nil, service.ViewAuth},
		{"coordinator", coordinator, service.ViewCoordinator},
		{"member", member, service.ViewMember},
		{"unknown role", &domain.User{ID: "x", Role: "admin"}, service.ViewAuth},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.Route(tc.user); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestSession_Flash(t *testing.T) {
	s := service.NewSession()
	if s.TakeFlash() != nil {
		t.Fatal("expected no flash")
	}
	s.Flash(service.NoticeLoggedOut)
	n := s.TakeFlash()
	if n == nil || n.Message != "Logged out successfully" {
		t.Fatalf("unexpected flash %+v", n)
	}
	if s.TakeFlash() != nil {
		t.Fatal("flash must be consumed once")
	}
}
