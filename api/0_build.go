package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/api/apitablev1"
	"github.com/fulldump/metaview/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	apitablev1.BuildV1Table(v1, s).
		WithInterceptors(
			injectServicer(s),
		)

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(apitablev1.SetServicer(ctx, s))
		}
	}
}
