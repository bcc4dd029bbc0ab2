package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultSettingsFile = "inventory.env"

// ConnectionSettings are the store connection parameters plus the last login used on this machine.
// The password is never persisted.
type ConnectionSettings struct {
	Driver    string
	Host      string
	Port      int
	Database  string
	User      string
	LastLogin string
}

var (
	ipv4Pattern     = regexp.MustCompile(`^[0-9]{1,3}(\.[0-9]{1,3}){3}$`)
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?$`)
)

func ConnectionSettingsFromEnv() *ConnectionSettings {
	return &ConnectionSettings{
		Driver:   strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER"))),
		Host:     os.Getenv("DB_HOST"),
		Port:     intFromEnv("DB_PORT", 3306),
		Database: os.Getenv("DB_NAME"),
		User:     os.Getenv("DB_USER"),
	}
}

func (s *ConnectionSettings) MySQLDSN(password string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?multiStatements=true&parseTime=true&charset=utf8mb4",
		s.User,
		password,
		s.Host,
		s.Port,
		s.Database,
	)
}

func (s *ConnectionSettings) Validate() error {
	if s.Driver != "" && s.Driver != DriverMySQL && s.Driver != DriverSQLite {
		return fmt.Errorf("unsupported driver %q", s.Driver)
	}
	if s.Driver == DriverSQLite {
		if strings.TrimSpace(s.Database) == "" {
			return errors.New("database path is required")
		}
		return nil
	}
	if err := ValidateHost(s.Host); err != nil {
		return err
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if strings.TrimSpace(s.Database) == "" {
		return errors.New("database name is required")
	}
	return nil
}

// ValidateHost accepts a dotted IPv4 address with octets up to 255, or a plain host name.
func ValidateHost(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return errors.New("host is required")
	}
	if ipv4Pattern.MatchString(host) {
		for _, octet := range strings.Split(host, ".") {
			n, _ := strconv.Atoi(octet)
			if n > 255 {
				return fmt.Errorf("invalid ip address %q", host)
			}
		}
		return nil
	}
	if !hostnamePattern.MatchString(host) {
		return fmt.Errorf("invalid host %q", host)
	}
	return nil
}

func LoadSettings(path string) (*ConnectionSettings, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	settings := &ConnectionSettings{
		Driver:    strings.ToLower(values["DB_DRIVER"]),
		Host:      values["DB_HOST"],
		Database:  values["DB_NAME"],
		User:      values["DB_USER"],
		LastLogin: values["LAST_LOGIN"],
	}
	if port := strings.TrimSpace(values["DB_PORT"]); port != "" {
		settings.Port, err = strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT %q", port)
		}
	}
	return settings, nil
}

func SaveSettings(path string, settings *ConnectionSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	values := map[string]string{
		"DB_DRIVER":  settings.Driver,
		"DB_HOST":    settings.Host,
		"DB_PORT":    strconv.Itoa(settings.Port),
		"DB_NAME":    settings.Database,
		"DB_USER":    settings.User,
		"LAST_LOGIN": settings.LastLogin,
	}
	return godotenv.Write(values, path)
}
