package mongodb

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
)

// requiredKeys는 연결 설정에 반드시 있어야 하는 키입니다
var requiredKeys = []string{"database", "host", "password", "port", "username"}

// Config는 MongoDB 연결 설정입니다.
// 필수 키 외의 설정은 lowerCamelCase로 변환되어 connection string 옵션이 됩니다.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Options  map[string]string
}

// ParseConfig는 평면 설정 맵을 Config로 변환합니다.
// 키는 대소문자를 구분하지 않으며 snake_case에서 lowerCamelCase로 정규화됩니다.
func ParseConfig(settings map[string]interface{}) (*Config, error) {
	normalized := make(map[string]string, len(settings))
	for key, value := range settings {
		normalized[lowerCamel(key)] = fmt.Sprint(value)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := normalized[key]; !ok {
			missing = append(missing, strings.ToUpper(key))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("invalid configuration. missing keys: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Host:     normalized["host"],
		Port:     normalized["port"],
		Username: normalized["username"],
		Password: normalized["password"],
		Database: normalized["database"],
		Options:  make(map[string]string),
	}
	for key, value := range normalized {
		if !isRequired(key) {
			cfg.Options[key] = value
		}
	}
	return cfg, nil
}

// URI는 드라이버에 전달할 connection string을 반환합니다
func (c *Config) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/",
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}

	if len(c.Options) > 0 {
		keys := make([]string, 0, len(c.Options))
		for k := range c.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := url.Values{}
		for _, k := range keys {
			values.Set(k, c.Options[k])
		}
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// Redacted는 비밀번호를 가린 connection string을 반환합니다
func (c *Config) Redacted() string {
	masked := *c
	if masked.Password != "" {
		masked.Password = "xxxxx"
	}
	return masked.URI()
}

func isRequired(key string) bool {
	for _, k := range requiredKeys {
		if k == key {
			return true
		}
	}
	return false
}

// lowerCamel은 대소문자 무관 snake_case 키를 lowerCamelCase로 변환합니다 (max_pool_size → maxPoolSize)
func lowerCamel(key string) string {
	parts := strings.Split(key, "_")
	var b strings.Builder
	for i, part := range parts {
		part = strings.ToLower(part)
		if i == 0 || part == "" {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
