package models

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

var ErrEditSessionNotFound = errors.New("edit session not found or expired")

// editSessionEnvelope is what the registry keeps per open session.
type editSessionEnvelope struct {
	Kind      string          `json:"kind"`
	UserId    int             `json:"user_id"`
	ExpiresAt time.Time       `json:"expires_at"`
	Payload   json.RawMessage `json:"payload"`
}

// in-process registry, used while redis is not connected
var memorySessions = struct {
	sync.Mutex
	m map[string]editSessionEnvelope
}{m: map[string]editSessionEnvelope{}}

func editSessionKey(token string) string {
	return "EditSession:" + token
}

// SaveEditSession keeps an opened edit (snapshot + original set) until it is committed,
// cancelled or expires, and returns the token that identifies it.
func SaveEditSession(ctx context.Context, kind string, edit interface{}) (string, error) {
	payload, err := json.Marshal(edit)
	if err != nil {
		return "", err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	lifetime := config.EditSessionLifetime()
	envelope := editSessionEnvelope{
		Kind:      kind,
		UserId:    userId,
		ExpiresAt: time.Now().Add(lifetime),
		Payload:   payload,
	}
	token := uuid.NewString()

	if config.GetRedisDB() != nil {
		if err := config.SetRedisObject(editSessionKey(token), envelope, lifetime); err != nil {
			return "", err
		}
		return token, nil
	}

	memorySessions.Lock()
	defer memorySessions.Unlock()
	pruneExpiredSessions(time.Now())
	memorySessions.m[token] = envelope
	return token, nil
}

// LoadEditSession returns the session stored under token. Sessions are private to the user that opened them.
func LoadEditSession[T any](ctx context.Context, kind string, token string) (*T, error) {
	var envelope editSessionEnvelope
	var found bool

	if config.GetRedisDB() != nil {
		var err error
		found, err = config.GetRedisObject(editSessionKey(token), &envelope)
		if err != nil {
			return nil, err
		}
	} else {
		memorySessions.Lock()
		envelope, found = memorySessions.m[token]
		memorySessions.Unlock()
	}

	if !found || envelope.Kind != kind || time.Now().After(envelope.ExpiresAt) {
		return nil, ErrEditSessionNotFound
	}
	if userId, _ := utils.GetUserIdFromContext(ctx); userId != envelope.UserId {
		return nil, utils.ErrPermissionDenied
	}

	var edit T
	if err := json.Unmarshal(envelope.Payload, &edit); err != nil {
		return nil, err
	}
	return &edit, nil
}

// DropEditSession discards a session; nothing it holds was ever written to the store.
func DropEditSession(ctx context.Context, token string) error {
	if config.GetRedisDB() != nil {
		return config.RemoveRedisKey(editSessionKey(token))
	}
	memorySessions.Lock()
	defer memorySessions.Unlock()
	delete(memorySessions.m, token)
	return nil
}

// caller holds memorySessions lock
func pruneExpiredSessions(now time.Time) {
	for token, envelope := range memorySessions.m {
		if now.After(envelope.ExpiresAt) {
			delete(memorySessions.m, token)
		}
	}
}
