package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

type sentMail struct {
	kind, to, code string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) record(kind, to, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{kind: kind, to: to, code: code})
	return nil
}

func (n *fakeNotifier) SendVerificationCode(_ context.Context, to, _, code string, _ time.Duration) error {
	return n.record("verify", to, code)
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, _, code string, _ time.Duration) error {
	return n.record("reset", to, code)
}

func (n *fakeNotifier) last(kind string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i].code
		}
	}
	return ""
}

type fakeStorage struct {
	paths []string
	err   error
}

func (s *fakeStorage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.paths = append(s.paths, objectPath)
	return "https://cdn.test/" + objectPath, nil
}

type fakeIndexer struct {
	indexed map[string]string
	removed []string
	hits    []ProfileHit
}

func newFakeIndexer() *fakeIndexer { return &fakeIndexer{indexed: map[string]string{}} }

func (x *fakeIndexer) Index(_ context.Context, p *entity.Profile) error {
	if p.Username == nil {
		return errors.New("no username")
	}
	x.indexed[p.ID] = *p.Username
	return nil
}

func (x *fakeIndexer) Remove(_ context.Context, profileID string) error {
	delete(x.indexed, profileID)
	x.removed = append(x.removed, profileID)
	return nil
}

func (x *fakeIndexer) Search(context.Context, string, int) ([]ProfileHit, error) {
	return x.hits, nil
}
