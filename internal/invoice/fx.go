package invoice

import (
	"github.com/guidebooker/invoice-service/internal/invoice/render"
	"github.com/guidebooker/invoice-service/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)
