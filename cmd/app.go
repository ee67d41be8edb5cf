package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isaaclog/isaaclog/internal/config"
	"github.com/isaaclog/isaaclog/internal/logging"
	"github.com/isaaclog/isaaclog/internal/mirror"
	"github.com/isaaclog/isaaclog/internal/ui"
)

// appContextKey is the context key for the App instance.
type appContextKey struct{}

// App holds the application dependencies that can be injected for testing.
type App struct {
	Config  config.Config
	Verbose bool
	Render  *ui.Renderer
	Logger  logging.Logger
	// AccountIDCache caches AWS account IDs by profile
	AccountIDCache map[string]string
}

// NewApp creates a new App with configuration merged by viper.
func NewApp() *App {
	cfg := loadConfig()

	r := render
	if r == nil {
		r = newRenderer(cfg)
	}

	return &App{
		Config:         cfg,
		Verbose:        IsVerbose(),
		Render:         r,
		Logger:         logging.Default(),
		AccountIDCache: make(map[string]string),
	}
}

// NewAppWithConfig creates a new App with the given configuration.
// This is primarily used for testing.
func NewAppWithConfig(cfg config.Config, renderer *ui.Renderer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &App{
		Config:         cfg,
		Render:         renderer,
		Logger:         logger,
		AccountIDCache: make(map[string]string),
	}
}

// GetApp retrieves the App from the command context.
// If no App is set, it creates a new default one.
func GetApp(cmd *cobra.Command) *App {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appContextKey{}).(*App); ok {
			return app
		}
	}
	return NewApp()
}

// SetApp stores the App in the context for a command.
func SetApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// Debugf prints a debug message if verbose mode is enabled.
// This is a method on App to allow per-instance verbose control.
func (a *App) Debugf(format string, args ...interface{}) {
	if (a.Verbose || viper.GetBool("verbose")) && a.Render != nil {
		a.Render.Debug(format, args...)
	}
}

// GetAccountID returns the AWS account ID for the configured profile.
// Results are cached to avoid repeated API calls during a session.
func (a *App) GetAccountID(ctx context.Context, profile, region string) string {
	if id, ok := a.AccountIDCache[profile]; ok {
		return id
	}

	id, err := mirror.AccountID(ctx, profile, region)
	if err != nil {
		a.Debugf("Failed to get account ID: %v", err)
		return ""
	}

	a.AccountIDCache[profile] = id
	return id
}
