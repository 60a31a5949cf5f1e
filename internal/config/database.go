// internal/config/database.go
package config

import (
	"fmt"
)

func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", d.SQLitePath)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
