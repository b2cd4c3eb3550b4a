package shared

const (
	MYSQL_DRIVER    = "mysql"
	POSTGRES_DRIVER = "postgres"
	SQLITE_DRIVER   = "sqlite"
)

type ServerConfig struct {
	Site     SiteConfig     `mapstructure:"site"`
	Listener ListenerConfig `mapstructure:"listener" validate:"required"`
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Security SecurityConfig `mapstructure:"security"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
}

type SiteConfig struct {
	Name  string `mapstructure:"name"`
	Owner string `mapstructure:"owner"`
}

type ListenerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// StoreConfig describes the relational store holding contact messages.
// For sqlite, Database is the path of the database file.
type StoreConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Database    string `mapstructure:"database"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`
}

type SecurityConfig struct {
	CSRFKey       string `mapstructure:"csrfKey" validate:"omitempty,len=32"`
	SecureCookies bool   `mapstructure:"secureCookies"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken" validate:"required_with=AccountSid"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid" validate:"required_with=AccountSid"`
	OwnerNumber         string `mapstructure:"ownerNumber" validate:"required_with=AccountSid"`
}

// Enabled reports whether owner notifications over SMS are configured.
func (tc TwilioConfig) Enabled() bool {
	return tc.AccountSid != ""
}

// Addr is the address the http server listens on.
func (lc ListenerConfig) Addr() string {
	return joinHostPort(lc.Host, lc.Port)
}
