package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/spf13/cobra"
)

var settingsInput config.ConnectionSettings

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show, save or check the store connection settings file",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved connection settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(settingsFile)
		if err != nil {
			return err
		}
		fmt.Printf("file:       %s\n", settingsFile)
		fmt.Printf("driver:     %s\n", valueOrDefault(settings.Driver, config.DriverMySQL))
		fmt.Printf("host:       %s\n", settings.Host)
		fmt.Printf("port:       %d\n", settings.Port)
		fmt.Printf("database:   %s\n", settings.Database)
		fmt.Printf("user:       %s\n", settings.User)
		fmt.Printf("last login: %s\n", valueOrDefault(settings.LastLogin, dim("(none)")))
		return nil
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Validate and write connection settings; the password is never stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		// keep what is already saved for flags that were not given
		if current, err := config.LoadSettings(settingsFile); err == nil {
			mergeUnset(cmd, &settingsInput, current)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.SaveSettings(settingsFile, &settingsInput); err != nil {
			return err
		}
		fmt.Printf("%s settings written to %s\n", ok("SAVED"), settingsFile)
		return nil
	},
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect to the store with the saved settings and DB_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(settingsFile)
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		conn, err := config.OpenDatabase(settings, os.Getenv("DB_PASSWORD"))
		if err != nil {
			fmt.Printf("%s %s\n", failed("UNREACHABLE"), dim(err.Error()))
			return errors.New("store connection failed")
		}
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
		fmt.Printf("%s %s %s\n", ok("CONNECTED"), valueOrDefault(settings.Driver, config.DriverMySQL), settings.Database)
		return nil
	},
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func mergeUnset(cmd *cobra.Command, input *config.ConnectionSettings, current *config.ConnectionSettings) {
	flags := cmd.Flags()
	if !flags.Changed("driver") {
		input.Driver = current.Driver
	}
	if !flags.Changed("host") {
		input.Host = current.Host
	}
	if !flags.Changed("port") && current.Port != 0 {
		input.Port = current.Port
	}
	if !flags.Changed("database") {
		input.Database = current.Database
	}
	if !flags.Changed("user") {
		input.User = current.User
	}
	if !flags.Changed("last-login") {
		input.LastLogin = current.LastLogin
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "file", config.DefaultSettingsFile, "connection settings file")

	flags := settingsSaveCmd.Flags()
	flags.StringVar(&settingsInput.Driver, "driver", config.DriverMySQL, "mysql or sqlite")
	flags.StringVar(&settingsInput.Host, "host", "", "store host name or IPv4 address")
	flags.IntVar(&settingsInput.Port, "port", 3306, "store port")
	flags.StringVar(&settingsInput.Database, "database", "", "database name, or file path for sqlite")
	flags.StringVar(&settingsInput.User, "user", "", "store user")
	flags.StringVar(&settingsInput.LastLogin, "last-login", "", "login to prefill on the next sign-in")

	settingsCmd.AddCommand(settingsShowCmd, settingsSaveCmd, settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}
