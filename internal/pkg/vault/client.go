// Package vault는 시작 시 MongoDB 자격증명과 애플리케이션 시크릿을 Vault에서 읽어옵니다.
package vault

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// Client는 Vault 클라이언트 래퍼입니다
type Client struct {
	client *vault.Client
	config *Config

	mu     sync.Mutex
	leases []string
}

// NewClient는 새로운 Vault 클라이언트를 생성하고 인증합니다
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vault config: %w", err)
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address
	vaultConfig.Timeout = cfg.Timeout

	if cfg.CACert != "" || cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{
			CACert:   cfg.CACert,
			Insecure: cfg.TLSSkipVerify,
		}); err != nil {
			return nil, fmt.Errorf("failed to configure vault TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	c := &Client{client: client, config: cfg}
	if err := c.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	logger.Info(ctx, "vault client initialized successfully",
		logger.Field("address", cfg.Address),
		logger.Field("auth_method", cfg.AuthMethod),
	)
	return c, nil
}

// authenticate는 Vault에 인증합니다
func (c *Client) authenticate(ctx context.Context) error {
	switch c.config.AuthMethod {
	case "token":
		c.client.SetToken(c.config.Token)
		if _, err := c.client.Auth().Token().LookupSelfWithContext(ctx); err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}

	case "approle":
		data := map[string]interface{}{
			"role_id":   c.config.RoleID,
			"secret_id": c.config.SecretID,
		}
		if err := c.login(ctx, "auth/approle/login", data); err != nil {
			return fmt.Errorf("approle login failed: %w", err)
		}

	case "kubernetes":
		jwt, err := os.ReadFile(c.config.K8sTokenPath)
		if err != nil {
			return fmt.Errorf("failed to read k8s service account token: %w", err)
		}
		data := map[string]interface{}{
			"role": c.config.K8sRole,
			"jwt":  string(jwt),
		}
		if err := c.login(ctx, "auth/kubernetes/login", data); err != nil {
			return fmt.Errorf("kubernetes login failed: %w", err)
		}

	default:
		return fmt.Errorf("unsupported auth method: %s", c.config.AuthMethod)
	}

	logger.Info(ctx, "authenticated with vault", logger.Field("auth_method", c.config.AuthMethod))
	return nil
}

func (c *Client) login(ctx context.Context, path string, data map[string]interface{}) error {
	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return err
	}
	if secret == nil || secret.Auth == nil {
		return fmt.Errorf("login returned no auth info")
	}
	c.client.SetToken(secret.Auth.ClientToken)
	return nil
}

// read는 시크릿을 읽고 KV v2의 data 래핑을 벗겨서 반환합니다
func (c *Client) read(ctx context.Context, path string) (*vault.Secret, map[string]interface{}, error) {
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		logger.Error(ctx, "failed to read secret",
			logger.Field("path", path),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = nested
	}
	return secret, data, nil
}

// HealthCheck는 Vault 연결 상태를 확인합니다
func (c *Client) HealthCheck(ctx context.Context) error {
	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

// Close는 발급받은 동적 자격증명의 lease를 취소합니다
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	leases := c.leases
	c.leases = nil
	c.mu.Unlock()

	for _, lease := range leases {
		if err := c.client.Sys().RevokeWithContext(ctx, lease); err != nil {
			logger.Warn(ctx, "failed to revoke lease",
				logger.Field("lease_id", lease),
				zap.Error(err),
			)
		}
	}
	logger.Info(ctx, "vault client closed")
	return nil
}
