package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config          *Config
	secretGenerated bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGeneratedSecret records that the session secret was generated for this
// process, so sessions will not survive a restart.
func WithGeneratedSecret(generated bool) Option {
	return func(a *application) {
		a.secretGenerated = generated
	}
}
