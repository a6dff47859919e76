package apitablev1

import (
	"context"

	"github.com/fulldump/metaview/service"
)

const ContextServicerKey = "9a1d5c52-31fe-11f0-8a3e-bb6f4b8e90ae"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer) // TODO: can raise panic :D
}
