package cmd

import (
	"context"
	"os"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/chrisdamba/trafficsim/internal/repositories/memory"
	"github.com/chrisdamba/trafficsim/internal/repositories/postgres"
	"github.com/chrisdamba/trafficsim/internal/repositories/sqlite"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/chrisdamba/trafficsim/internal/simulator/producers"
	"go.uber.org/zap"
)

type stores struct {
	traffic   repositories.TrafficSampleRepository
	devices   repositories.DeviceRepository
	incidents repositories.IncidentRepository
	close     func()
}

// openStores builds the repositories for the configured driver. Devices and
// incidents live in postgres when that driver is selected and in memory
// otherwise.
func openStores(ctx context.Context, config *models.Config) (*stores, error) {
	switch config.Store.Driver {
	case models.StoreDriverPostgres:
		pool, err := postgres.Connect(ctx, config.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &stores{
			traffic:   postgres.NewTrafficSampleRepository(pool),
			devices:   postgres.NewDeviceRepository(pool),
			incidents: postgres.NewIncidentRepository(pool),
			close:     pool.Close,
		}, nil
	case models.StoreDriverSQLite:
		repo, err := sqlite.NewTrafficSampleRepository(config.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		closeRepo := func() {
			if err := repo.Close(); err != nil {
				log.Warn("failed to close sqlite store", zap.Error(err))
			}
		}
		return &stores{
			traffic:   repo,
			devices:   memory.NewDeviceRepository(),
			incidents: memory.NewIncidentRepository(),
			close:     closeRepo,
		}, nil
	default:
		return &stores{
			traffic:   memory.NewTrafficSampleRepository(),
			devices:   memory.NewDeviceRepository(),
			incidents: memory.NewIncidentRepository(),
			close:     func() {},
		}, nil
	}
}

// openOutput returns the destination every appended sample is published to,
// or nil when neither Kafka nor console output is enabled.
func openOutput(config *models.Config) (simulator.OutputDestination, error) {
	switch {
	case config.KafkaEnabled:
		producer, err := producers.NewSaramaProducer(config, log)
		if err != nil {
			return nil, err
		}
		return producer, nil
	case config.ConsoleOutput:
		return simulator.NewConsoleOutput(os.Stdout), nil
	default:
		return nil, nil
	}
}
