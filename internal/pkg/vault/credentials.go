package vault

import (
	"context"
	"fmt"
)

// DatabaseCredentials는 데이터베이스 자격증명입니다
type DatabaseCredentials struct {
	Username      string
	Password      string
	LeaseID       string
	LeaseDuration int
}

// MongoDBCredentials는 MongoDBPath에서 자격증명을 읽습니다.
// 동적 자격증명이면 lease를 기록해 두었다가 Close에서 취소합니다.
func (c *Client) MongoDBCredentials(ctx context.Context) (*DatabaseCredentials, error) {
	secret, data, err := c.read(ctx, c.config.MongoDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get mongodb credentials: %w", err)
	}

	username, ok := data["username"].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("username not found in credentials")
	}
	password, ok := data["password"].(string)
	if !ok {
		return nil, fmt.Errorf("password not found in credentials")
	}

	if secret.LeaseID != "" {
		c.mu.Lock()
		c.leases = append(c.leases, secret.LeaseID)
		c.mu.Unlock()
	}

	return &DatabaseCredentials{
		Username:      username,
		Password:      password,
		LeaseID:       secret.LeaseID,
		LeaseDuration: secret.LeaseDuration,
	}, nil
}

// AppSecret은 SecretsPath의 KV 시크릿에서 key 값을 읽습니다 (예: jwt_secret)
func (c *Client) AppSecret(ctx context.Context, key string) (string, error) {
	_, data, err := c.read(ctx, c.config.SecretsPath)
	if err != nil {
		return "", err
	}
	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("key %q not found at %s", key, c.config.SecretsPath)
	}
	return value, nil
}
