package allocator

import (
	"math/rand/v2"
	"slices"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

type Allocator struct {
	parameters *Parameters
	sites      []domain.Site
	pool       domain.ResourcePool
}

func New(parameters *Parameters, sites []domain.Site, pool domain.ResourcePool) (*Allocator, error) {
	if err := Validate(parameters, sites, pool); err != nil {
		return nil, err
	}

	copied := *parameters

	return &Allocator{
		parameters: &copied,
		sites:      slices.Clone(sites),
		pool:       pool,
	}, nil
}

// 每次 Run 都使用新的随机源，指定种子时同一个 Allocator 多次运行的结果相同
func (a *Allocator) newRand() *rand.Rand {
	if a.parameters.Seed != nil {
		return rand.New(rand.NewPCG(*a.parameters.Seed, *a.parameters.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Validate 在运行开始前检查所有参数，运行过程中不会再出现参数错误
func Validate(parameters *Parameters, sites []domain.Site, pool domain.ResourcePool) error {
	if len(sites) == 0 {
		return &ConfigError{Field: "sites", Err: ErrNoSites}
	}
	if parameters.PopulationSize < 2 {
		return &ConfigError{Field: "populationSize", Err: ErrPopulationTooSmall}
	}
	if parameters.EliteCount < 1 || parameters.EliteCount > parameters.PopulationSize {
		return &ConfigError{Field: "eliteCount", Err: ErrEliteCountOutOfRange}
	}
	if parameters.GenerationCount < 0 {
		return &ConfigError{Field: "generationCount", Err: ErrNegativeGenerations}
	}
	// NaN 也视为非法
	if !(parameters.MutationRate >= 0 && parameters.MutationRate <= 1) {
		return &ConfigError{Field: "mutationRate", Err: ErrMutationRateOutOfRange}
	}

	for _, r := range domain.Resources {
		if err := checkQuantity(pool.Capacity(r)); err != nil {
			return &ConfigError{Field: "pool", Err: err}
		}
		for _, site := range sites {
			if err := checkQuantity(site.Required(r)); err != nil {
				return &ConfigError{Field: "sites", Err: err}
			}
		}
	}

	return nil
}

func checkQuantity(v int) error {
	switch {
	case v < 0:
		return ErrNegativeQuantity
	case v > MaxQuantity:
		return ErrQuantityTooLarge
	}
	return nil
}

/**
 * 运行遗传算法
 * INIT -> {EVALUATE -> REPORT -> SELECT -> BREED} x GenerationCount -> EXTRACT
 * 注意返回的是最后一代中的最优个体，中间代出现过的更优个体只会体现在 FitnessHistory 中
 */
func (a *Allocator) Run(onGeneration ProgressFunc) (*RunResult, error) {
	populationSize := a.parameters.PopulationSize
	generationCount := a.parameters.GenerationCount
	eliteCount := a.parameters.EliteCount
	rng := a.newRand()

	// 生成初始种群
	pop := InitializePopulation(rng, a.sites, a.pool, populationSize)
	history := make([]float64, 0, generationCount)

	for gen := 0; gen < generationCount; gen++ {
		ranked := Rank(pop, a.sites, a.pool)

		// 记录本代最佳适应度
		history = append(history, ranked[0].Fitness)
		if onGeneration != nil {
			onGeneration(gen+1, generationCount, slices.Clone(history))
		}

		parents, err := Select(rng, ranked, eliteCount)
		if err != nil {
			return nil, err
		}

		// 保留精英
		newPop := make([]Chromosome, 0, populationSize)
		for _, s := range ranked[:eliteCount] {
			newPop = append(newPop, s.Chromosome.Clone())
		}

		// 其余位置由交叉和变异产生的子代补满
		for len(newPop) < populationSize {
			idx := sampleDistinct(rng, len(parents), 2)
			child := Crossover(rng, parents[idx[0]], parents[idx[1]])
			newPop = append(newPop, Mutate(rng, child, a.parameters.MutationRate, a.pool))
		}

		pop = newPop
	}

	// 返回结果
	ranked := Rank(pop, a.sites, a.pool)

	return &RunResult{
		BestChromosome: ranked[0].Chromosome,
		BestScore:      ranked[0].Fitness,
		FitnessHistory: history,
	}, nil
}
