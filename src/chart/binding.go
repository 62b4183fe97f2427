package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monitor-dashboard/src/history"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"
)

// ErrNoData is returned when neither history nor live samples exist
var ErrNoData = errors.New("no chart data")

// -----------------------------------------------------------------------------
// Binding joins a history timeframe with the live tail of a realtime metric
// and the presentation parameters of one chart card.
// -----------------------------------------------------------------------------

type Binding struct {
	history      interfaces.IHistoryFetcher
	series       *utils.SeriesManager
	store        *store.RealtimeStore
	loc          *time.Location
	aggregateKey string
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBinding(h interfaces.IHistoryFetcher, series *utils.SeriesManager, st *store.RealtimeStore, loc *time.Location, aggregateKey string, log *logger.Logger) *Binding {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewLogger(nil, "Chart")
	}
	return &Binding{
		history:      h,
		series:       series,
		store:        st,
		loc:          loc,
		aggregateKey: aggregateKey,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// Bind builds the dataset for one chart card
func (b *Binding) Bind(ctx context.Context, entityID, timeframe string, view models.MChartView) (*models.MChartDataset, error) {
	ds := &models.MChartDataset{
		EntityID:  entityID,
		Timeframe: timeframe,
		Labels:    []string{},
		Data:      []float64{},
		Resize:    ResizeParams(view.Width),
		Zoom:      ZoomOptions(view.ZoomEnabled, timeframe),
	}

	if view.Color != "" {
		color, err := AdjustColorAlpha(view.DarkMode, view.Color)
		if err != nil {
			return nil, err
		}
		ds.Color = color
	}

	series, ok := b.history.Fetch(ctx, entityID, timeframe)
	if ok {
		ds.Labels = series.Labels
		ds.Data = series.Data
	}

	if view.Metric != "" {
		if b.store != nil {
			if v, found := b.store.Get(view.Metric); found {
				ds.Current = v
			}
		}
		b.appendLive(ds, view.Metric, timeframe)
	}

	if !ok && ds.LiveCount == 0 {
		return nil, fmt.Errorf("%w for %s/%s", ErrNoData, entityID, timeframe)
	}
	return ds, nil
}

// -----------------------------------------------------------------------------

// appendLive adds the samples recorded after the last history point
func (b *Binding) appendLive(ds *models.MChartDataset, metric, timeframe string) {
	if b.series == nil {
		return
	}

	var since int64
	if n := len(ds.Labels); n > 0 {
		last, err := b.parseLabel(ds.Labels[n-1], timeframe)
		if err != nil {
			b.Logger.Warning("Cannot place live samples after %q: %v", ds.Labels[n-1], err)
			return
		}
		since = last.UnixMilli()
	}

	for _, s := range b.series.GetSince(metric, since) {
		ds.Labels = append(ds.Labels, time.UnixMilli(s.Timestamp).In(b.labelZone(timeframe)).Format(history.LabelLayout))
		ds.Data = append(ds.Data, s.Value)
		ds.LiveCount++
	}
}

// -----------------------------------------------------------------------------

// The aggregate series keeps its UTC labels
func (b *Binding) labelZone(timeframe string) *time.Location {
	if timeframe == b.aggregateKey {
		return time.UTC
	}
	return b.loc
}

func (b *Binding) parseLabel(label, timeframe string) (time.Time, error) {
	return history.ParseLocalLabel(label, b.labelZone(timeframe))
}
