package cmd

import (
	"net"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag"

	"github.com/etlcraft/snowbridge/pkg/apiservice"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

// AuthMode is the --auth flag of every command that connects.
type AuthMode enumflag.Flag

const (
	AuthModePassword AuthMode = iota
	AuthModeKeyPair
	AuthModeOAuth
)

var AuthModeIds = map[AuthMode][]string{
	AuthModePassword: {"password"},
	AuthModeKeyPair:  {"key-pair"},
	AuthModeOAuth:    {"oauth2"},
}

var authModeToAuthType = map[AuthMode]snowsql.AuthType{
	AuthModePassword: snowsql.AuthTypePassword,
	AuthModeKeyPair:  snowsql.AuthTypeKeyPair,
	AuthModeOAuth:    snowsql.AuthTypeOAuth,
}

// OnErrorFlag is the --on-error flag of the sink command.
type OnErrorFlag enumflag.Flag

const (
	OnErrorFlagAbort OnErrorFlag = iota
	OnErrorFlagContinue
	OnErrorFlagSkipFile
)

var OnErrorFlagIds = map[OnErrorFlag][]string{
	OnErrorFlagAbort:    {"abort-statement"},
	OnErrorFlagContinue: {"continue"},
	OnErrorFlagSkipFile: {"skip-file"},
}

var onErrorFlagToMode = map[OnErrorFlag]snowsql.OnErrorMode{
	OnErrorFlagAbort:    snowsql.OnErrorAbort,
	OnErrorFlagContinue: snowsql.OnErrorContinue,
	OnErrorFlagSkipFile: snowsql.OnErrorSkipFile,
}

// snowflakeFlags holds the connection flags shared by every command.
type snowflakeFlags struct {
	config         snowsql.Config
	authMode       AuthMode
	privateKeyFile string
}

func addSnowflakeFlags(cmd *cobra.Command, flags *snowflakeFlags) {
	cmd.Flags().StringVar(&flags.config.AccountId, "snowflake.account-id", "", "snowflake account id: <organization>-<account>")
	cmd.Flags().StringVar(&flags.config.Warehouse, "snowflake.warehouse", "COMPUTE_WH", "")
	cmd.Flags().StringVarP(&flags.config.User, "snowflake.user", "u", "", "snowflake user")
	cmd.Flags().StringVarP(&flags.config.Pass, "snowflake.pass", "p", "", "snowflake password")
	cmd.Flags().StringVar(&flags.config.Role, "snowflake.role", "", "snowflake role")
	cmd.Flags().StringVar(&flags.config.Database, "snowflake.database", "", "snowflake database")
	cmd.Flags().StringVar(&flags.config.Schema, "snowflake.schema", "", "snowflake schema")
	cmd.Flags().Var(enumflag.New(&flags.authMode, "auth", AuthModeIds, enumflag.EnumCaseInsensitive),
		"auth", "authentication method: password, key-pair, oauth2")
	cmd.Flags().StringVar(&flags.privateKeyFile, "snowflake.private-key-file", "", "path of the PKCS#8 private key (key-pair auth)")
	cmd.Flags().StringVar(&flags.config.Passphrase, "snowflake.passphrase", "", "passphrase of the private key")
	cmd.Flags().StringVar(&flags.config.OAuthClientId, "snowflake.oauth-client-id", "", "oauth2 client id")
	cmd.Flags().StringVar(&flags.config.OAuthClientSecret, "snowflake.oauth-client-secret", "", "oauth2 client secret")
	cmd.Flags().StringVar(&flags.config.OAuthRefreshToken, "snowflake.oauth-refresh-token", "", "oauth2 refresh token")
	cmd.Flags().StringVar(&flags.config.ConnectionArguments, "snowflake.connection-args", "", "extra driver arguments: k1=v1,k2=v2")

	cmd.MarkFlagRequired("snowflake.account-id")
}

// resolve finalizes the config after flag parsing.
func (flags *snowflakeFlags) resolve() (*snowsql.Config, error) {
	flags.config.Auth = authModeToAuthType[flags.authMode]
	if flags.privateKeyFile != "" {
		pem, err := os.ReadFile(flags.privateKeyFile)
		if err != nil {
			return nil, errors.Annotate(err, "Failed to read private key file")
		}
		flags.config.PrivateKey = string(pem)
	}
	return &flags.config, nil
}

func addLogFlags(cmd *cobra.Command, logFile, logLevel *string) {
	cmd.Flags().StringVar(logFile, "log.file", "", "log file path")
	cmd.Flags().StringVar(logLevel, "log.level", "info", "log level")
}

func initLogger(logLevel, logFile string) error {
	logger, props, err := log.InitLogger(&log.Config{
		Level: logLevel,
		File:  log.FileLogConfig{Filename: logFile},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// startAPIService exposes /info and /metrics when an address is given.
func startAPIService(addr string) (*apiservice.APIService, error) {
	if addr == "" {
		return nil, nil
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to listen on API address")
	}
	service := apiservice.New()
	service.Serve(l)
	return service, nil
}

func resolveAWSCredential(storagePath string) (*credentials.Value, error) {
	uri, err := url.Parse(storagePath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if uri.Scheme == "s3" {
		creds := credentials.NewEnvCredentials()
		credValue, err := creds.Get()
		return &credValue, err
	}
	return nil, errors.New("Not a s3 storage")
}
