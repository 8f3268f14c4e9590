package school

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Session links a token handed out on login to the logged in user.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// sessionDocument is stored under Options.SessionKey, apart from the main document.
type sessionDocument struct {
	Sessions map[string]Session `json:"sessions"`
}

func (s *Store) loadSessions(ctx context.Context) (*sessionDocument, error) {
	sd := &sessionDocument{Sessions: map[string]Session{}}
	data, err := s.backend.Load(ctx, s.opts.SessionKey)
	if err != nil {
		if errors.Cause(err) == ErrNoDocument {
			return sd, nil
		}
		return nil, errors.Wrap(err, "loading sessions")
	}
	if err = json.Unmarshal(data, sd); err != nil {
		return nil, errors.Wrap(err, "decoding sessions")
	}
	if sd.Sessions == nil {
		sd.Sessions = map[string]Session{}
	}
	return sd, nil
}

func (s *Store) saveSessions(ctx context.Context, sd *sessionDocument) error {
	data, err := json.Marshal(sd)
	if err != nil {
		return errors.Wrap(err, "encoding sessions")
	}
	return errors.Wrap(s.backend.Save(ctx, s.opts.SessionKey, data), "saving sessions")
}

// StartSession hands out a new session token for the user with userID.
func (s *Store) StartSession(ctx context.Context, userID int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Session{}, err
	}
	if doc.userIndex(userID) < 0 {
		return Session{}, ErrNotFound
	}

	sd, err := s.loadSessions(ctx)
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: nowFunc().UTC(),
	}
	sd.Sessions[sess.Token] = sess
	if err = s.saveSessions(ctx, sd); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// CurrentUser returns the user the session token belongs to.
func (s *Store) CurrentUser(ctx context.Context, token string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sd, err := s.loadSessions(ctx)
	if err != nil {
		return User{}, err
	}
	sess, ok := sd.Sessions[token]
	if !ok {
		return User{}, ErrSessionNotFound
	}
	doc, err := s.load(ctx)
	if err != nil {
		return User{}, err
	}
	idx := doc.userIndex(sess.UserID)
	if idx < 0 {
		return User{}, ErrSessionNotFound
	}
	return doc.Users[idx].public(), nil
}

// EndSession drops the session token and marks its user inactive.
func (s *Store) EndSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sd, err := s.loadSessions(ctx)
	if err != nil {
		return err
	}
	sess, ok := sd.Sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	delete(sd.Sessions, token)
	if err = s.saveSessions(ctx, sd); err != nil {
		return err
	}

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := doc.userIndex(sess.UserID)
	if idx < 0 {
		return nil
	}
	doc.Users[idx].IsActive = false
	s.appendLog(doc, doc.Users[idx].Login, "logged out", LogTypeAuth, LogLevelInfo)
	return s.save(ctx, doc)
}
