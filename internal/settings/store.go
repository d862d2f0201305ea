package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	indexKey      = constants.RedisKeySettingsPrefix + "index"
	updateChannel = constants.RedisKeySettingsPrefix + "updates"
)

var profileRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// Store persists swap config profiles in Redis and announces updates so
// other API instances can follow.
type Store struct {
	client redis.UniversalClient
	logger *logrus.Logger
}

func NewStore(client redis.UniversalClient, logger *logrus.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{client: client, logger: logger}, nil
}

func ValidateProfile(profile string) error {
	if !profileRe.MatchString(profile) {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	return nil
}

// Save stores cfg under profile and publishes it.
func (s *Store) Save(ctx context.Context, profile string, cfg swap.SwapConfig) (*Record, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	rec := &Record{Profile: profile, Config: cfg, UpdatedAt: time.Now().UTC()}
	b, err := sonic.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, profileKey(profile), b, 0)
	pipe.SAdd(ctx, indexKey, profile)
	pipe.Publish(ctx, updateChannel, b)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	return rec, nil
}

func (s *Store) Get(ctx context.Context, profile string) (*Record, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, profileKey(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var rec Record
	if err := sonic.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &rec, nil
}

// Profiles lists stored profile names.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list settings index: %w", err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if ValidateProfile(n) == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// Delete removes a stored profile. Deleting a missing profile is not an error.
func (s *Store) Delete(ctx context.Context, profile string) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, profileKey(profile))
	pipe.SRem(ctx, indexKey, profile)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

// Watch calls apply for every update published for profile until ctx ends.
func (s *Store) Watch(ctx context.Context, profile string, apply func(*Record)) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	pubsub := s.client.Subscribe(ctx, updateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to settings updates: %w", err)
	}
	s.logger.WithField("channel", updateChannel).Info("watching settings updates")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rec Record
			if err := sonic.UnmarshalString(msg.Payload, &rec); err != nil {
				s.logger.WithError(err).Warn("ignoring malformed settings update")
				continue
			}
			if rec.Profile != profile {
				continue
			}
			apply(&rec)
		}
	}
}

func profileKey(profile string) string {
	return constants.RedisKeySettingsPrefix + "profile:" + profile
}
