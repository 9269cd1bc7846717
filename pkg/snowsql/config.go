package snowsql

import (
	"crypto/rsa"
	"database/sql"
	"encoding/pem"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/snowflakedb/gosnowflake"
	"github.com/youmark/pkcs8"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/utils"
)

// ApplicationName tags every session so the warehouse can attribute load.
const ApplicationName = "Snowbridge"

// AuthType selects how the connection authenticates.
type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeKeyPair  AuthType = "key-pair"
	AuthTypeOAuth    AuthType = "oauth2"
)

type Config struct {
	AccountId string
	Warehouse string
	User      string
	Pass      string
	Role      string
	Database  string
	Schema    string

	Auth AuthType

	// Key-pair auth. PrivateKey holds the PKCS#8 PEM text; Passphrase is
	// empty for unencrypted keys.
	PrivateKey string
	Passphrase string

	// OAuth2 auth. The refresh token is exchanged for an access token on
	// every OpenDB call.
	OAuthClientId     string
	OAuthClientSecret string
	OAuthRefreshToken string

	// ConnectionArguments is an extra "k1=v1,k2=v2" list passed through to
	// the driver as session parameters.
	ConnectionArguments string
}

// Validate collects configuration problems without opening a connection.
func (config *Config) Validate(fc *plugin.FailureCollector) {
	if config.AccountId == "" {
		fc.Addf("snowflake.account-id is required")
	}
	switch config.Auth {
	case AuthTypePassword, "":
		if config.User == "" || config.Pass == "" {
			fc.Addf("user and password are required for password authentication")
		}
	case AuthTypeKeyPair:
		if config.User == "" || config.PrivateKey == "" {
			fc.Addf("user and private key are required for key-pair authentication")
		}
	case AuthTypeOAuth:
		if config.OAuthClientId == "" || config.OAuthClientSecret == "" || config.OAuthRefreshToken == "" {
			fc.Addf("client id, client secret and refresh token are required for oauth2 authentication")
		}
	default:
		fc.Addf("unknown auth type %q", config.Auth)
	}
	if _, err := utils.ParseKeyValueList(config.ConnectionArguments); err != nil {
		fc.Addf("invalid connection arguments: %v", err)
	}
}

func (config *Config) driverConfig() (*gosnowflake.Config, error) {
	sfConfig := gosnowflake.Config{
		Account:     config.AccountId,
		User:        config.User,
		Database:    config.Database,
		Schema:      config.Schema,
		Warehouse:   config.Warehouse,
		Role:        config.Role,
		Application: ApplicationName,
	}

	args, err := utils.ParseKeyValueList(config.ConnectionArguments)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to parse connection arguments")
	}
	if len(args) > 0 {
		sfConfig.Params = make(map[string]*string, len(args))
		for k, v := range args {
			v := v
			sfConfig.Params[k] = &v
		}
	}

	switch config.Auth {
	case AuthTypePassword, "":
		sfConfig.Password = config.Pass
	case AuthTypeKeyPair:
		key, err := parsePrivateKey(config.PrivateKey, config.Passphrase)
		if err != nil {
			return nil, errors.Annotate(err, "Failed to parse private key")
		}
		sfConfig.Authenticator = gosnowflake.AuthTypeJwt
		sfConfig.PrivateKey = key
	case AuthTypeOAuth:
		token, err := fetchAccessToken(config)
		if err != nil {
			return nil, errors.Annotate(err, "Failed to fetch OAuth access token")
		}
		sfConfig.Authenticator = gosnowflake.AuthTypeOAuth
		sfConfig.Token = token
	default:
		return nil, errors.Errorf("Unknown auth type: %s", config.Auth)
	}
	return &sfConfig, nil
}

func parsePrivateKey(pemText, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, errors.New("Private key is not valid PEM")
	}
	var (
		parsed interface{}
		err    error
	)
	if passphrase != "" {
		parsed, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
	} else {
		parsed, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("Private key is %T, only RSA keys are supported", parsed)
	}
	return key, nil
}

/// Implement the plugin Config interface.

// OpenDB opens a connection to Snowflake and verifies it with a ping.
func (config *Config) OpenDB() (*sql.DB, error) {
	sfConfig, err := config.driverConfig()
	if err != nil {
		return nil, errors.Trace(err)
	}
	dsn, err := gosnowflake.DSN(sfConfig)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to generate Snowflake DSN")
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open Snowflake connection")
	}
	// make sure the connection is available
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "Failed to ping Snowflake")
	}
	log.Info("Snowflake connection established")
	return db, nil
}
