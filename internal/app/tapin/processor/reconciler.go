package processor

import (
	"context"

	"tapin/internal/app/tapin/service"
	"tapin/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Reconciler периодически сверяет оптимистичное состояние с backend:
// заново выбирает коллекцию под текущий фильтр и обновляет отзывы со
// средним рейтингом для открытой панели деталей. Оптимистичные значения -
// транзиент; авторитетный ответ сервера всегда перекрывает их.
type Reconciler struct {
	cron     *cron.Cron
	listings *service.ListingService
	detail   *service.DetailService
}

func NewReconciler(listings *service.ListingService, detail *service.DetailService) *Reconciler {
	return &Reconciler{
		cron:     cron.New(),
		listings: listings,
		detail:   detail,
	}
}

func (r *Reconciler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting reconciler")

	_, err := r.cron.AddFunc(schedule, func() {
		if err := r.listings.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("collection reconcile failed")
		}
		r.detail.Reconcile(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

func (r *Reconciler) Stop() {
	logger.Info().Msg("stopping reconciler")
	ctx := r.cron.Stop()
	<-ctx.Done()
}
