package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/adapters/sqlstore"
)

// ErrSinkNotQueryable is returned when the configured sink keeps no history.
var ErrSinkNotQueryable = errors.New("submission sink keeps no history; set FORMCHAT_SINK to sqlite or postgres")

// ListSubmissions prints stored submissions as JSON lines, newest first.
func ListSubmissions(ctx context.Context, app *App, limit int, w io.Writer) error {
	enc := json.NewEncoder(w)

	switch sink := app.Sink.(type) {
	case *sqlstore.Sink:
		subs, err := sink.List(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list submissions: %w", err)
		}
		for _, s := range subs {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case *memory.Sink:
		subs := sink.Submissions()
		for i := len(subs) - 1; i >= 0 && (limit <= 0 || len(subs)-i <= limit); i-- {
			if err := enc.Encode(subs[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrSinkNotQueryable
	}
}
