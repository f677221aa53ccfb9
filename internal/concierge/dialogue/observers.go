package dialogue

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/dining-concierge/server/internal/concierge/model"
	logx "github.com/dining-concierge/server/pkg/logger"
)

// newTurnObserver logs node lifecycle events for the dialogue graph.
// Attach it via compose.WithCallbacks(...) when invoking the graph.
func newTurnObserver() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			if info != nil {
				logx.Debug().Str("node", info.Name).Str("component", string(info.Component)).Msg("dialogue node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info == nil {
				return ctx
			}
			ev := logx.Debug().Str("node", info.Name).Str("component", string(info.Component))
			if resp, ok := output.(model.DialogueResponse); ok {
				ev = ev.Str("state", string(resp.State))
			}
			ev.Msg("dialogue node end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			name := ""
			if info != nil {
				name = info.Name
			}
			logx.Error().Err(err).Str("node", name).Msg("dialogue node failed")
			return ctx
		}).
		Build()
}
