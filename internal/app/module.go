package app

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/api/server"
	"github.com/fatflowers/notemarket/internal/app/service/access"
	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	notificationlog "github.com/fatflowers/notemarket/internal/app/service/notification_log"
	"github.com/fatflowers/notemarket/internal/app/service/reaper"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/app/service/statistics"
	"github.com/fatflowers/notemarket/internal/platform/db"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/logger"
	"github.com/fatflowers/notemarket/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// fxLogger routes container events through the application logger.
func fxLogger(l *zap.SugaredLogger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Desugar()}
}

var Module = fx.Options(
	fx.WithLogger(fxLogger),
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	mercadopago.Module,
	server.Module,
	catalog.Module,
	ledger.Module,
	merchantlink.Module,
	notificationlog.Module,
	settlement.Module,
	access.Module,
	statistics.Module,
	reaper.Module,
)
