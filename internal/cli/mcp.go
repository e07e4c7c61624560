package cli

import (
	"context"
	"fmt"

	"github.com/regality/formchat/internal/config"
	"github.com/regality/formchat/pkg/adapters/mcp"
)

// ServeMCP exposes the dialogue as MCP tools over Stdin/Stdout.
// Logs go to Stderr so they never corrupt the protocol stream.
func ServeMCP(ctx context.Context, cfg *config.Config, debug bool) error {
	logger, err := serverLogger(cfg.LogLevel, cfg.LogFormat, debug)
	if err != nil {
		return err
	}

	app, err := NewApp(ctx, cfg, AppOptions{Logger: logger})
	if err != nil {
		return fmt.Errorf("error initializing formchat: %w", err)
	}
	defer app.Close()

	logger.Info("MCP server starting (stdio)", "fields", app.Engine.Catalog().Size())
	return mcp.NewServer(app.Manager, mcp.WithForms(app.Forms), mcp.WithLogger(logger)).ServeStdio()
}
