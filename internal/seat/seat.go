// internal/seat/seat.go
//
// Seat tokens guard explicit resumption.
//
// A seat token is an HS256 JWT whose subject is the player identity and whose
// "room" claim is the room code. The transport hands one out in the ack of
// create/join/resume and requires it on "resume" so a client cannot take over
// another player's seat by guessing its identity.
//
// An empty secret disables tokens: Issue returns "" and Verify accepts anything.

package seat

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that does not match the seat.
var ErrInvalidToken = errors.New("invalid seat token")

// Claims carried by a seat token.
type Claims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// Signer issues and verifies seat tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer. ttl <= 0 means 24h.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether tokens are issued and checked.
func (s *Signer) Enabled() bool { return len(s.secret) > 0 }

// Issue signs a token for playerID in roomID.
func (s *Signer) Issue(roomID, playerID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Room: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	ss, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return ss, nil
}

// Verify checks that token was issued for playerID in roomID and has not expired.
func (s *Signer) Verify(token, roomID, playerID string) error {
	if !s.Enabled() {
		return nil
	}
	if token == "" {
		return ErrInvalidToken
	}
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(playerID),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		return ErrInvalidToken
	}
	if claims.Room != roomID {
		return ErrInvalidToken
	}
	return nil
}
