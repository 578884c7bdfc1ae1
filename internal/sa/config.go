package sa

import "fmt"

// Тип окрестности
type Neighborhood string

const (
	NeighborhoodSwap   Neighborhood = "swap"
	NeighborhoodInsert Neighborhood = "insert"
)

type Config struct {
	Iterations            int `yaml:"iterations"`
	IterationsPerCustomer int `yaml:"iterations_per_customer"`

	InitialTemp float64 `yaml:"initial_temp"`
	FinalTemp   float64 `yaml:"final_temp"`
	Alpha       float64 `yaml:"alpha"`

	Neighborhood Neighborhood `yaml:"neighborhood"`

	// MaxAttempts ограничивает поиск случайного допустимого начального решения.
	MaxAttempts int `yaml:"max_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:            0,
		IterationsPerCustomer: 2500,

		InitialTemp: 100.0,
		FinalTemp:   0.01,
		Alpha:       0.9995,

		Neighborhood: NeighborhoodSwap,

		MaxAttempts: 1000,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerCustomer <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerCustomer > 0",
		)
	}
	if c.InitialTemp <= 0 {
		return fmt.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FinalTemp <= 0 {
		return fmt.Errorf(
			"FinalTemp должно быть > 0 (получено %f)",
			c.FinalTemp,
		)
	}
	if c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf(
			"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FinalTemp,
			c.InitialTemp,
		)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf(
			"alpha должно лежать в интервале (0,1) (получено %f)",
			c.Alpha,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodSwap, NeighborhoodInsert:
		// ok
	default:
		return fmt.Errorf(
			"неизвестный тип окрестности %q",
			c.Neighborhood,
		)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf(
			"MaxAttempts должно быть > 0 (получено %d)",
			c.MaxAttempts,
		)
	}
	return nil
}
