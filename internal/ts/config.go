package ts

import "fmt"

// Neighborhood определяет тип окрестности.
type Neighborhood string

const (
	NeighborhoodInsert Neighborhood = "insert"
	NeighborhoodSwap   Neighborhood = "swap"
)

type Config struct {
	Iterations            int `yaml:"iterations"`
	IterationsPerCustomer int `yaml:"iterations_per_customer"`

	TabuTenure int `yaml:"tabu_tenure"`

	TabuTenureRand int `yaml:"tabu_tenure_rand"`

	NeighborsPerIter int `yaml:"neighbors_per_iter"`

	Neighborhood Neighborhood `yaml:"neighborhood"`

	// MaxAttempts ограничивает поиск случайного допустимого начального решения.
	MaxAttempts int `yaml:"max_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:            0,
		IterationsPerCustomer: 20,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 40,
		Neighborhood:     NeighborhoodInsert,

		MaxAttempts: 1000,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerCustomer <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerCustomer > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return fmt.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodInsert, NeighborhoodSwap:
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
