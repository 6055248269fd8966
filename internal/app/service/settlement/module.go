package settlement

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	notificationlog "github.com/fatflowers/notemarket/internal/app/service/notification_log"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/metrics"
)

type Params struct {
	fx.In

	Settings Settings
	Ledger   *ledger.Service
	Links    *merchantlink.Service
	Catalog  *catalog.Service
	Provider *mercadopago.Client
	Notes    *notificationlog.Service
	Metrics  *metrics.Business
	Log      *zap.SugaredLogger
}

func New(p Params) *Engine {
	return NewEngine(p.Settings, p.Ledger, p.Links, p.Catalog, p.Provider, p.Notes, p.Metrics, p.Log)
}

// Module exposes the settlement engine via Fx, both as *Engine and Manager.
var Module = fx.Options(
	fx.Provide(NewSettings),
	fx.Provide(New),
	fx.Provide(func(e *Engine) Manager { return e }),
)
