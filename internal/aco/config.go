package aco

import "fmt"

type Config struct {
	Iterations int `yaml:"iterations"`

	Ants int `yaml:"ants"`

	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`

	// Rho - доля феромона, сохраняемая после испарения.
	Rho float64 `yaml:"rho"`

	Q float64 `yaml:"q"`

	Tau0 float64 `yaml:"tau0"`

	// MaxAttempts - сколько раз муравей перестраивает решение, пока оно не станет допустимым.
	MaxAttempts int `yaml:"max_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Iterations: 100,

		Ants: 40,

		Alpha: 0.2,
		Beta:  1.0,

		Rho: 0.9,
		Q:   1.0,

		Tau0: 1.0,

		MaxAttempts: 20,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf(
			"iterations должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.Ants <= 0 {
		return fmt.Errorf(
			"ants должно быть > 0 (получено %d)",
			c.Ants,
		)
	}
	if c.Alpha < 0 {
		return fmt.Errorf(
			"alpha должно быть >= 0 (получено %f)",
			c.Alpha,
		)
	}
	if c.Beta < 0 {
		return fmt.Errorf(
			"beta должно быть >= 0 (получено %f)",
			c.Beta,
		)
	}
	if c.Rho <= 0 || c.Rho > 1 {
		return fmt.Errorf(
			"rho должно лежать в интервале (0,1] (получено %f)",
			c.Rho,
		)
	}
	if c.Q <= 0 {
		return fmt.Errorf(
			"Q должно быть > 0 (получено %f)",
			c.Q,
		)
	}
	if c.Tau0 <= 0 {
		return fmt.Errorf(
			"tau0 должно быть > 0 (получено %f)",
			c.Tau0,
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
