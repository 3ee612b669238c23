package config

// AdminConfig carries the credentials of the built-in admin login. The
// password arrives in plaintext from the environment and is hashed once at
// startup; only the hash is kept in memory. Clearing either field disables
// the admin login entirely.
type AdminConfig struct {
	Email    string `yaml:"email" env:"STORE_ADMIN_EMAIL" env-default:"admin@gmail.com"`
	Password string `yaml:"password" env:"STORE_ADMIN_PASSWORD" env-default:"admin123"`
}

// Enabled reports whether an admin login is configured.
func (a *AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}
