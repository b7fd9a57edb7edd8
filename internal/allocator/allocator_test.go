package allocator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

func seed(v uint64) *uint64 {
	return &v
}

func defaultParameters() *Parameters {
	return &Parameters{
		PopulationSize:  50,
		GenerationCount: 100,
		MutationRate:    0.1,
		EliteCount:      2,
		Seed:            seed(7),
	}
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Parameters)
		sites  []domain.Site
		pool   domain.ResourcePool
		field  string
		want   error
	}{
		{
			name:  "没有需求点",
			sites: nil,
			pool:  threePool,
			field: "sites",
			want:  ErrNoSites,
		},
		{
			name:   "种群大小为 1",
			modify: func(p *Parameters) { p.PopulationSize = 1; p.EliteCount = 1 },
			sites:  threeSites,
			pool:   threePool,
			field:  "populationSize",
			want:   ErrPopulationTooSmall,
		},
		{
			name:   "精英数量为 0",
			modify: func(p *Parameters) { p.EliteCount = 0 },
			sites:  threeSites,
			pool:   threePool,
			field:  "eliteCount",
			want:   ErrEliteCountOutOfRange,
		},
		{
			name:   "精英数量超过种群大小",
			modify: func(p *Parameters) { p.EliteCount = 51 },
			sites:  threeSites,
			pool:   threePool,
			field:  "eliteCount",
			want:   ErrEliteCountOutOfRange,
		},
		{
			name:   "迭代次数为负数",
			modify: func(p *Parameters) { p.GenerationCount = -1 },
			sites:  threeSites,
			pool:   threePool,
			field:  "generationCount",
			want:   ErrNegativeGenerations,
		},
		{
			name:   "变异概率大于 1",
			modify: func(p *Parameters) { p.MutationRate = 1.5 },
			sites:  threeSites,
			pool:   threePool,
			field:  "mutationRate",
			want:   ErrMutationRateOutOfRange,
		},
		{
			name:   "变异概率为 NaN",
			modify: func(p *Parameters) { p.MutationRate = math.NaN() },
			sites:  threeSites,
			pool:   threePool,
			field:  "mutationRate",
			want:   ErrMutationRateOutOfRange,
		},
		{
			name:  "资源总量为负数",
			sites: threeSites,
			pool:  domain.ResourcePool{TotalVolunteers: 1, TotalTrucks: -1, TotalPackages: 1},
			field: "pool",
			want:  ErrNegativeQuantity,
		},
		{
			name:  "资源总量为 int 上限",
			sites: threeSites,
			pool:  domain.ResourcePool{TotalVolunteers: math.MaxInt, TotalTrucks: 1, TotalPackages: 1},
			field: "pool",
			want:  ErrQuantityTooLarge,
		},
		{
			name:  "资源总量超过上限",
			sites: threeSites,
			pool:  domain.ResourcePool{TotalVolunteers: 1, TotalTrucks: 1, TotalPackages: MaxQuantity + 1},
			field: "pool",
			want:  ErrQuantityTooLarge,
		},
		{
			name:  "需求量超过上限",
			sites: []domain.Site{{Name: "X", RequiredTrucks: MaxQuantity + 1}},
			pool:  threePool,
			field: "sites",
			want:  ErrQuantityTooLarge,
		},
		{
			name:  "需求量为负数",
			sites: []domain.Site{{Name: "X", RequiredPackages: -3}},
			pool:  threePool,
			field: "sites",
			want:  ErrNegativeQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParameters()
			if tt.modify != nil {
				tt.modify(p)
			}

			a, err := New(p, tt.sites, tt.pool)
			require.Nil(t, a)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun(t *testing.T) {
	a, err := New(defaultParameters(), threeSites, threePool)
	require.NoError(t, err)

	res, err := a.Run(nil)
	require.NoError(t, err)

	assert.Len(t, res.FitnessHistory, 100)
	assert.Len(t, res.BestChromosome, len(threeSites)*domain.ResourceCount)
	assert.Equal(t, Evaluate(res.BestChromosome, threeSites, threePool), res.BestScore)
	for _, gene := range res.BestChromosome {
		assert.GreaterOrEqual(t, gene, 0)
	}

	// 精英保留保证了最后一代的最优个体不差于最后一次记录的最优适应度
	assert.GreaterOrEqual(t, res.BestScore, res.FitnessHistory[len(res.FitnessHistory)-1])
}

func TestRunReportsEveryGeneration(t *testing.T) {
	p := defaultParameters()
	p.GenerationCount = 25

	a, err := New(p, threeSites, threePool)
	require.NoError(t, err)

	var generations []int
	var lastHistory []float64
	res, err := a.Run(func(generation int, total int, history []float64) {
		assert.Equal(t, 25, total)
		assert.Len(t, history, generation)
		generations = append(generations, generation)
		lastHistory = history
	})
	require.NoError(t, err)

	require.Len(t, generations, 25)
	for i, g := range generations {
		assert.Equal(t, i+1, g)
	}
	assert.Equal(t, res.FitnessHistory, lastHistory)
}

func TestRunHistoryPassedToCallbackIsACopy(t *testing.T) {
	p := defaultParameters()
	p.GenerationCount = 5

	a, err := New(p, threeSites, threePool)
	require.NoError(t, err)

	res, err := a.Run(func(generation int, total int, history []float64) {
		history[0] = -1
	})
	require.NoError(t, err)

	assert.NotEqual(t, -1.0, res.FitnessHistory[0])
}

func TestRunWithZeroGenerations(t *testing.T) {
	p := defaultParameters()
	p.GenerationCount = 0

	a, err := New(p, threeSites, threePool)
	require.NoError(t, err)

	called := false
	res, err := a.Run(func(int, int, []float64) { called = true })
	require.NoError(t, err)

	assert.False(t, called)
	assert.Empty(t, res.FitnessHistory)
	assert.Len(t, res.BestChromosome, len(threeSites)*domain.ResourceCount)
	assert.Equal(t, Evaluate(res.BestChromosome, threeSites, threePool), res.BestScore)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	run := func() *RunResult {
		a, err := New(defaultParameters(), threeSites, threePool)
		require.NoError(t, err)
		res, err := a.Run(nil)
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()

	assert.Equal(t, first.BestChromosome, second.BestChromosome)
	assert.Equal(t, first.BestScore, second.BestScore)
	assert.Equal(t, first.FitnessHistory, second.FitnessHistory)
}

func TestRunTwiceOnSameAllocatorIsReproducible(t *testing.T) {
	a, err := New(defaultParameters(), threeSites, threePool)
	require.NoError(t, err)

	first, err := a.Run(nil)
	require.NoError(t, err)
	second, err := a.Run(nil)
	require.NoError(t, err)

	assert.Equal(t, first.BestChromosome, second.BestChromosome)
	assert.Equal(t, first.FitnessHistory, second.FitnessHistory)
}

func TestRunWithMaxQuantityPool(t *testing.T) {
	p := defaultParameters()
	p.GenerationCount = 5
	pool := domain.ResourcePool{TotalVolunteers: MaxQuantity, TotalTrucks: MaxQuantity, TotalPackages: MaxQuantity}

	a, err := New(p, threeSites, pool)
	require.NoError(t, err)

	res, err := a.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, Evaluate(res.BestChromosome, threeSites, pool), res.BestScore)
}

func TestRunWithMinimalPopulation(t *testing.T) {
	p := &Parameters{
		PopulationSize:  2,
		GenerationCount: 10,
		MutationRate:    0.5,
		EliteCount:      1,
		Seed:            seed(1),
	}

	a, err := New(p, oneSite, onePool)
	require.NoError(t, err)

	res, err := a.Run(nil)
	require.NoError(t, err)
	assert.Len(t, res.FitnessHistory, 10)
}

func TestRunWhenEveryIndividualIsElite(t *testing.T) {
	p := &Parameters{
		PopulationSize:  4,
		GenerationCount: 5,
		MutationRate:    0.1,
		EliteCount:      4,
		Seed:            seed(3),
	}

	a, err := New(p, oneSite, onePool)
	require.NoError(t, err)

	res, err := a.Run(nil)
	require.NoError(t, err)

	// 没有子代产生，种群保持不变，每一代的最优适应度都相同
	for _, score := range res.FitnessHistory {
		assert.Equal(t, res.FitnessHistory[0], score)
	}
	assert.Equal(t, res.FitnessHistory[0], res.BestScore)
}

func TestRunDoesNotModifySites(t *testing.T) {
	sites := []domain.Site{
		{Name: "Posko A", RequiredVolunteers: 10, RequiredTrucks: 3, RequiredPackages: 40},
		{Name: "Posko B", RequiredVolunteers: 14, RequiredTrucks: 4, RequiredPackages: 60},
	}
	before := append([]domain.Site{}, sites...)

	a, err := New(defaultParameters(), sites, threePool)
	require.NoError(t, err)
	_, err = a.Run(nil)
	require.NoError(t, err)

	assert.Equal(t, before, sites)
}
