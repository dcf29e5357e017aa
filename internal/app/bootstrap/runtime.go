package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/geovantage/lead-intake/internal/config"
	"github.com/geovantage/lead-intake/internal/cooldown"
	"github.com/geovantage/lead-intake/pkg/logging"
)

// AWSLoader resolves the shared AWS SDK config.
type AWSLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// lazyAWS loads the AWS config on first use so deployments without any AWS
// backend never touch the credential chain.
type lazyAWS struct {
	load AWSLoader
	cfg  *appconfig.Config

	once   sync.Once
	awsCfg aws.Config
	err    error
}

func (l *lazyAWS) get(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		if l.load == nil {
			l.err = fmt.Errorf("bootstrap: aws loader not configured")
			return
		}
		l.awsCfg, l.err = l.load(ctx, l.cfg)
	})
	return l.awsCfg, l.err
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// cooldownTTL keeps stored timestamps for a few windows after they stop mattering.
func cooldownTTL(interval time.Duration) time.Duration {
	return 3 * interval
}

// buildCooldownStore picks the timestamp backend named by COOLDOWN_BACKEND.
func buildCooldownStore(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, awsLoader *lazyAWS, logger *logging.Logger) (cooldown.Store, error) {
	ttl := cooldownTTL(cfg.LeadCooldown)
	switch cfg.CooldownBackend {
	case "", "memory":
		logger.Warn("using in-memory cooldown store; timestamps are lost on restart")
		return cooldown.NewMemoryStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: redis cooldown backend requires REDIS_ADDR")
		}
		return cooldown.NewRedisStore(redisClient, ttl), nil
	case "dynamodb":
		if strings.TrimSpace(cfg.CooldownTable) == "" {
			return nil, fmt.Errorf("bootstrap: dynamodb cooldown backend requires COOLDOWN_TABLE")
		}
		awsCfg, err := awsLoader.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return cooldown.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.CooldownTable, ttl), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown cooldown backend %q", cfg.CooldownBackend)
	}
}
