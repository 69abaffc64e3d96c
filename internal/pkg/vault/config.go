package vault

import (
	"fmt"
	"time"
)

// Config는 Vault 클라이언트 설정입니다
type Config struct {
	// Vault 서버 주소
	Address string

	// 인증 방법 (token, approle, kubernetes)
	AuthMethod string
	Token      string

	// AppRole 설정
	RoleID   string
	SecretID string

	// Kubernetes 설정
	K8sRole      string
	K8sTokenPath string

	Namespace string

	// TLS 설정
	TLSSkipVerify bool
	CACert        string

	// MongoDBPath는 MongoDB 자격증명 경로입니다.
	// database/creds/<role> 형태면 동적 자격증명, 그 외에는 KV 시크릿으로 읽습니다.
	MongoDBPath string
	// SecretsPath는 jwt_secret 등 애플리케이션 시크릿이 있는 KV 경로입니다
	SecretsPath string

	Timeout time.Duration
}

// DefaultConfig는 기본 Vault 설정을 반환합니다
func DefaultConfig() *Config {
	return &Config{
		Address:      "http://localhost:8200",
		AuthMethod:   "token",
		K8sTokenPath: "/var/run/secrets/kubernetes.io/serviceaccount/token",
		MongoDBPath:  "database/creds/reports-service",
		SecretsPath:  "secret/data/reports-service",
		Timeout:      10 * time.Second,
	}
}

// Validate는 설정을 검증합니다
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("vault address is required")
	}

	switch c.AuthMethod {
	case "token":
		if c.Token == "" {
			return fmt.Errorf("vault token is required for token auth")
		}
	case "approle":
		if c.RoleID == "" || c.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth")
		}
	case "kubernetes":
		if c.K8sRole == "" {
			return fmt.Errorf("kubernetes role is required for kubernetes auth")
		}
		if c.K8sTokenPath == "" {
			c.K8sTokenPath = DefaultConfig().K8sTokenPath
		}
	default:
		return fmt.Errorf("unsupported auth method: %s", c.AuthMethod)
	}

	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
