package ga

import "fmt"

type Config struct {
	Population    int     `yaml:"population"`
	Generations   int     `yaml:"generations"`
	CrossoverRate float64 `yaml:"crossover_rate"`
	MutationRate  float64 `yaml:"mutation_rate"`
	// MaxAttempts ограничивает повтор PMX для одной пары родителей; при
	// инициализации популяция получает общий бюджет Population*MaxAttempts.
	MaxAttempts int `yaml:"max_attempts"`
}

func (c Config) Validate() error {
	if c.Population <= 1 {
		return fmt.Errorf(
			"размер популяции должен быть > 1 (получено %d)",
			c.Population,
		)
	}
	if c.Generations <= 0 {
		return fmt.Errorf(
			"количество поколений должно быть > 0 (получено %d)",
			c.Generations,
		)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf(
			"порог кроссовера должен быть в диапазоне [0,1] (получено %f)",
			c.CrossoverRate,
		)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf(
			"порог мутации должен быть в диапазоне [0,1] (получено %f)",
			c.MutationRate,
		)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf(
			"число попыток должно быть > 0 (получено %d)",
			c.MaxAttempts,
		)
	}
	return nil
}

// DefaultConfig - параметры стационарного ГА. Кроссовер применяется, когда
// случайное число превышает CrossoverRate, мутация - когда превышает MutationRate.
func DefaultConfig() Config {
	return Config{
		Population:    800,
		Generations:   700,
		CrossoverRate: 0.13,
		MutationRate:  0.24,
		MaxAttempts:   50,
	}
}
