package cmd

import (
	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/chrisdamba/trafficsim/internal/simulator"
)

func newSimulator(config *models.Config, repo repositories.TrafficSampleRepository, opts ...simulator.Option) *simulator.Simulator {
	factory := factories.NewTrafficSampleFactory(factories.NewRand(config.Seed), config.BaseLocation())
	opts = append([]simulator.Option{simulator.WithLogger(log)}, opts...)
	return simulator.NewSimulator(config, repo, factory, opts...)
}
