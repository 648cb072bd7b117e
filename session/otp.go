package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCodeInvalid = errors.New("invalid or expired code")
	ErrTooSoon     = errors.New("a code was sent recently")
)

// OTPStore keeps one-shot phone sign-in codes in Redis. A code lives for its
// TTL, is consumed on first successful verify, and re-sends are throttled.
type OTPStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	throttle time.Duration
}

func NewOTPStore(rdb *redis.Client, ttl, throttle time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: ttl, throttle: throttle}
}

func otpKey(phone string) string      { return fmt.Sprintf("otp:code:%s", phone) }
func otpThrottle(phone string) string { return fmt.Sprintf("otp:sent:%s", phone) }

// NewCode returns a random 6-digit code, zero-padded.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates and stores a code for the phone number. Returns ErrTooSoon
// while the previous code's throttle window is still open.
func (s *OTPStore) Issue(ctx context.Context, phone string) (string, error) {
	ok, err := s.rdb.SetNX(ctx, otpThrottle(phone), "1", s.throttle).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrTooSoon
	}
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, otpKey(phone), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the stored code on match. A wrong or expired code returns
// ErrCodeInvalid and leaves nothing behind to retry against forever: the key
// expires on its own TTL.
func (s *OTPStore) Verify(ctx context.Context, phone, code string) error {
	stored, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if err == redis.Nil {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeInvalid
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, otpKey(phone))
	pipe.Del(ctx, otpThrottle(phone))
	_, err = pipe.Exec(ctx)
	return err
}
