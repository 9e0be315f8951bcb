package sales

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// RunAbandonedCartSweeper marca carritos abandonados cada interval hasta que ctx se cancele.
func RunAbandonedCartSweeper(ctx context.Context, uc *SaleUseCase, interval, olderThan time.Duration, log *logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("abandoned-carts")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Dur("older_than", olderThan).Msg("barrido de carritos iniciado")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("barrido de carritos detenido")
			return
		case <-ticker.C:
			if _, err := uc.MarkAbandonedCarts(ctx, olderThan); err != nil {
				log.Error().Err(err).Msg("error marcando carritos abandonados")
			}
		}
	}
}
