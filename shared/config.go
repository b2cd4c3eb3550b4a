package shared

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	devconfig "github.com/Daskott/folio/dev/config"
	"github.com/Daskott/folio/utils"
	"github.com/go-playground/validator"
	"github.com/spf13/viper"
)

const (
	ENV_VAR_PREFIX  = "FOLIO"
	DEVELOPMENT_ENV = "development"

	DEFAULT_PORT       = 5000
	DEFAULT_STORE_HOST = "localhost"
)

// Insecure store credentials, only ever applied in development mode.
const (
	DEV_STORE_USER     = "default_user"
	DEV_STORE_PASSWORD = "default_password"
	DEV_STORE_DATABASE = "default_db"
)

// ErrMissingSetting is returned when a setting required outside development mode is absent.
var ErrMissingSetting = errors.New("missing required setting")

// IsDevelopment reports whether the server should run in development mode,
// either because the flag was set or because FOLIO_ENV=development.
func IsDevelopment(devFlag bool) bool {
	return devFlag || strings.EqualFold(os.Getenv(ENV_VAR_PREFIX+"_ENV"), DEVELOPMENT_ENV)
}

// LoadServerConfig reads the server config from configFile (or the embedded dev config
// when configFile is empty in development mode), applies environment overrides and validates it.
func LoadServerConfig(configFile string, devMode bool) (*ServerConfig, error) {
	config := viper.New()
	setDefaults(config, devMode)

	if err := bindEnv(config); err != nil {
		return nil, err
	}

	switch {
	case configFile != "":
		if !utils.FileExist(configFile) {
			return nil, fmt.Errorf("server config file %q does not exist", configFile)
		}

		config.SetConfigFile(configFile)
		if err := config.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading server config file: %v", err)
		}
	case devMode:
		config.SetConfigType("yaml")
		if err := config.ReadConfig(strings.NewReader(devconfig.SERVER_YML)); err != nil {
			return nil, fmt.Errorf("error reading dev server config: %v", err)
		}
	}

	serverConfig := &ServerConfig{}
	if err := config.Unmarshal(serverConfig); err != nil {
		return nil, fmt.Errorf("unable to decode server config: %v", err)
	}

	if err := ValidateServerConfig(serverConfig, devMode); err != nil {
		return nil, err
	}

	return serverConfig, nil
}

// ValidateServerConfig checks struct constraints and, outside development mode,
// that the store credentials were provided explicitly.
func ValidateServerConfig(config *ServerConfig, devMode bool) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid server config: %v", err)
	}

	if devMode {
		return nil
	}

	missing := []string{}
	if config.Store.Database == "" {
		missing = append(missing, "store.database")
	}

	if config.Store.Driver != SQLITE_DRIVER {
		if config.Store.User == "" {
			missing = append(missing, "store.user")
		}
		if config.Store.Password == "" {
			missing = append(missing, "store.password")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	return nil
}

func setDefaults(config *viper.Viper, devMode bool) {
	config.SetDefault("site.name", "folio")
	config.SetDefault("site.owner", "")

	config.SetDefault("listener.host", "")
	config.SetDefault("listener.port", DEFAULT_PORT)

	config.SetDefault("store.driver", MYSQL_DRIVER)
	config.SetDefault("store.host", DEFAULT_STORE_HOST)
	config.SetDefault("store.port", 0)
	config.SetDefault("store.user", "")
	config.SetDefault("store.password", "")
	config.SetDefault("store.database", "")
	config.SetDefault("store.autoMigrate", devMode)

	config.SetDefault("security.csrfKey", "")
	config.SetDefault("security.secureCookies", !devMode)

	config.SetDefault("twilio.accountSid", "")
	config.SetDefault("twilio.authToken", "")
	config.SetDefault("twilio.messagingServiceSid", "")
	config.SetDefault("twilio.ownerNumber", "")

	if devMode {
		config.SetDefault("store.user", DEV_STORE_USER)
		config.SetDefault("store.password", DEV_STORE_PASSWORD)
		config.SetDefault("store.database", DEV_STORE_DATABASE)
	}
}

// bindEnv keeps the MYSQL_* and PORT env var names used by existing deployments working,
// alongside FOLIO_* overrides for every key. The first env var set wins.
func bindEnv(config *viper.Viper) error {
	config.SetEnvPrefix(ENV_VAR_PREFIX)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	bindings := map[string][]string{
		"store.host":     {"FOLIO_STORE_HOST", "MYSQL_HOST"},
		"store.user":     {"FOLIO_STORE_USER", "MYSQL_USER"},
		"store.password": {"FOLIO_STORE_PASSWORD", "MYSQL_PASSWORD"},
		"store.database": {"FOLIO_STORE_DATABASE", "MYSQL_DB"},
		"listener.port":  {"FOLIO_LISTENER_PORT", "PORT"},
	}

	for key, envVars := range bindings {
		if err := config.BindEnv(append([]string{key}, envVars...)...); err != nil {
			return err
		}
	}

	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
