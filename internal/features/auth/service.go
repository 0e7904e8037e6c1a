package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"nextgen-crm/internal/store"
	"nextgen-crm/pkg/utils"

	"go.uber.org/zap"
)

const CollectionUsers = "users"

const (
	maxFailedAttempts = 5
	attemptWindow     = 15 * time.Minute
)

// User is the credential record behind the identity-provider boundary.
type User struct {
	ID       string `json:"id" bson:"-"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
	Status   string `json:"status" bson:"status"`
}

// Principal is the authenticated identity handed to the resolver. It
// lives for the session only and is never persisted.
type Principal struct {
	AuthID string `json:"authId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Principal, error)
}

type AuthServiceImpl struct {
	Store store.Store
	Log   *zap.Logger

	mu       sync.Mutex
	failures map[string][]time.Time
}

func NewAuthService(s store.Store, log *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Store:    s,
		Log:      log,
		failures: make(map[string][]time.Time),
	}
}

func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") || strings.Contains(email, " ") {
		return nil, ErrInvalidEmail
	}
	if s.throttled(email) {
		return nil, ErrTooManyAttempts
	}

	docs, err := s.Store.Get(ctx, store.Query{
		Collection: CollectionUsers,
		Filters:    []store.Filter{store.Where("email", "==", email)},
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		s.recordFailure(email)
		return nil, ErrUserNotFound
	}

	var usr User
	if err := store.Decode(docs[0], &usr); err != nil {
		return nil, err
	}
	usr.ID = docs[0].ID

	// Check password (TODO: use bcrypt)
	if usr.Password != password {
		s.recordFailure(email)
		return nil, ErrWrongPassword
	}

	s.clearFailures(email)

	token, err := utils.GenerateToken(usr.ID, usr.Email, "")
	if err != nil {
		return nil, err
	}

	s.Log.Info("user signed in", zap.String("email", email))
	return &Principal{AuthID: usr.ID, Email: usr.Email, Token: token}, nil
}

func (s *AuthServiceImpl) throttled(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-attemptWindow)
	recent := s.failures[email][:0]
	for _, t := range s.failures[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.failures[email] = recent
	return len(recent) >= maxFailedAttempts
}

func (s *AuthServiceImpl) recordFailure(email string) {
	s.mu.Lock()
	s.failures[email] = append(s.failures[email], time.Now())
	s.mu.Unlock()
}

func (s *AuthServiceImpl) clearFailures(email string) {
	s.mu.Lock()
	delete(s.failures, email)
	s.mu.Unlock()
}
