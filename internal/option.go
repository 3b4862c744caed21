package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	importDir string
	watch     bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithImportDir sets the markdown directory read by RunImport.
func WithImportDir(dir string) Option {
	return func(a *application) {
		a.importDir = dir
	}
}

// WithWatch keeps RunImport running and re-imports files as they change.
func WithWatch(watch bool) Option {
	return func(a *application) {
		a.watch = watch
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	return app, nil
}
