package evrp

import (
	"fmt"
	"math"
	"math/rand"
)

const randomGridSize = 100.0

// RandomInstance генерирует экземпляр на квадрате 100x100: customers клиентов
// с целочисленным спросом [1..9], stations станций зарядки и vehicles машин.
// Грузоподъёмность оставляет запас 40% к среднему спросу на машину, батареи
// хватает на самое длинное ребро графа.
func RandomInstance(customers, stations, vehicles int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if customers <= 0 || stations < 0 || vehicles <= 0 {
		panic("invalid instance dimensions")
	}

	coords := make(map[NodeID]Point, customers+stations+1)
	demand := make(map[NodeID]float64, customers+1)
	point := func() Point {
		return Point{X: rng.Float64() * randomGridSize, Y: rng.Float64() * randomGridSize}
	}

	coords[Depot] = point()
	demand[Depot] = 0
	total, maxDemand := 0.0, 0.0
	for i := 0; i < customers; i++ {
		id := Depot + 1 + NodeID(i)
		coords[id] = point()
		d := float64(1 + rng.Intn(9))
		demand[id] = d
		total += d
		maxDemand = math.Max(maxDemand, d)
	}

	ids := make([]NodeID, 0, stations)
	for i := 0; i < stations; i++ {
		id := Depot + 1 + NodeID(customers+i)
		coords[id] = point()
		ids = append(ids, id)
	}

	longest := 0.0
	for a, pa := range coords {
		for b, pb := range coords {
			if a < b {
				longest = math.Max(longest, math.Hypot(pa.X-pb.X, pa.Y-pb.Y))
			}
		}
	}

	const rate = 1.0
	fleet := Fleet{
		Vehicles:         vehicles,
		CarryingCapacity: math.Max(maxDemand, math.Ceil(1.4*total/float64(vehicles))),
		BatteryCapacity:  math.Ceil(rate * longest),
		ConsumptionRate:  rate,
	}
	inst, err := NewInstance(fleet, coords, demand, ids)
	if err != nil {
		panic(err)
	}
	inst.Name = fmt.Sprintf("random-%dx%d", customers, vehicles)
	return inst
}
