package logging

import (
	"context"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	reqid "github.com/hanpama/fedgraph/internal/reqid"
)

// Subscribe logs finished requests, operations, _entities calls and schema
// builds published on bus. Failures log at warn, everything else at debug.
func Subscribe(bus *eventbus.Bus, logger *zap.Logger) (unsubscribe func()) {
	offs := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.HTTPFinish) {
			fields := append(requestFields(ctx),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Int64("bytes", e.Bytes),
				zap.Duration("duration", e.Duration),
			)
			if e.Status >= 400 {
				logger.Warn("http request", fields...)
				return
			}
			logger.Debug("http request", fields...)
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.GraphQLFinish) {
			fields := append(requestFields(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Duration("duration", e.Duration),
			)
			if len(e.Errors) > 0 {
				fields = append(fields, zap.Errors("errors", e.Errors))
				if len(e.Codes) > 0 {
					fields = append(fields, zap.Strings("codes", e.Codes))
				}
				logger.Warn("graphql operation", fields...)
				return
			}
			logger.Debug("graphql operation", fields...)
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.EntitiesFinish) {
			fields := append(requestFields(ctx),
				zap.Int("representations", e.Representations),
				zap.Int("loads", e.Loads),
				zap.Int("errors", e.Errors),
				zap.Duration("duration", e.Duration),
			)
			if e.Errors > 0 {
				logger.Warn("entities resolved", fields...)
				return
			}
			logger.Debug("entities resolved", fields...)
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.SchemaBuild) {
			fields := []zap.Field{
				zap.Bool("gateway", e.Gateway),
				zap.Int("fragments", e.Fragments),
				zap.Int("types", e.Types),
				zap.Strings("entities", e.Entities),
				zap.Duration("duration", e.Duration),
			}
			if e.Err != nil {
				logger.Warn("schema build failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Info("schema built", fields...)
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func requestFields(ctx context.Context) []zap.Field {
	if rid, ok := reqid.FromContext(ctx); ok {
		return []zap.Field{zap.String("request_id", rid)}
	}
	return nil
}
