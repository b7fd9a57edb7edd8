package allocator

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 42))
}

var (
	oneSite = []domain.Site{
		{Name: "Posko A", RequiredVolunteers: 10, RequiredTrucks: 3, RequiredPackages: 100},
	}
	onePool = domain.ResourcePool{TotalVolunteers: 25, TotalTrucks: 8, TotalPackages: 300}

	threeSites = []domain.Site{
		{Name: "Posko A", RequiredVolunteers: 10, RequiredTrucks: 3, RequiredPackages: 40},
		{Name: "Posko B", RequiredVolunteers: 14, RequiredTrucks: 4, RequiredPackages: 60},
		{Name: "Posko C", RequiredVolunteers: 9, RequiredTrucks: 2, RequiredPackages: 30},
	}
	threePool = domain.ResourcePool{TotalVolunteers: 25, TotalTrucks: 8, TotalPackages: 100}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		ch    Chromosome
		sites []domain.Site
		pool  domain.ResourcePool
		want  float64
	}{
		{
			name:  "需求全部满足",
			ch:    Chromosome{10, 3, 100},
			sites: oneSite,
			pool:  onePool,
			want:  1.0,
		},
		{
			name:  "什么都没有分配",
			ch:    Chromosome{0, 0, 0},
			sites: oneSite,
			pool:  onePool,
			want:  1.0 / 114,
		},
		{
			name:  "多分配的部分不计入奖励",
			ch:    Chromosome{20, 8, 300},
			sites: oneSite,
			pool:  onePool,
			want:  1.0,
		},
		{
			name:  "志愿者超过总量",
			ch:    Chromosome{6, 0, 0},
			sites: []domain.Site{{Name: "X", RequiredVolunteers: 1}},
			pool:  domain.ResourcePool{TotalVolunteers: 5, TotalTrucks: 5, TotalPackages: 5},
			want:  0,
		},
		{
			name:  "多个需求点的卡车总和超过总量",
			ch:    Chromosome{0, 5, 0, 0, 4, 0, 0, 0, 0},
			sites: threeSites,
			pool:  threePool,
			want:  0,
		},
		{
			name:  "一个需求点的富余不能抵消另一个需求点的缺口",
			ch:    Chromosome{20, 3, 40, 0, 4, 60, 5, 1, 0},
			sites: threeSites,
			pool:  threePool,
			// 缺口 = 14 (B 的志愿者) + 4 (C 的志愿者) + 1 (C 的卡车) + 30 (C 的物资包)
			want: 1.0 / 50,
		},
		{
			name: "分配总和超过 int 上限",
			ch:   Chromosome{math.MaxInt - 1, 0, 0, math.MaxInt - 1, 0, 0},
			sites: []domain.Site{
				{Name: "A", RequiredVolunteers: 1},
				{Name: "B", RequiredVolunteers: 1},
			},
			pool: domain.ResourcePool{TotalVolunteers: math.MaxInt - 1, TotalTrucks: 1, TotalPackages: 1},
			want: 0,
		},
		{
			name:  "分配量恰好等于总量",
			ch:    Chromosome{math.MaxInt32, 0, 0},
			sites: []domain.Site{{Name: "A", RequiredVolunteers: math.MaxInt32}},
			pool:  domain.ResourcePool{TotalVolunteers: math.MaxInt32},
			want:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Evaluate(tt.ch, tt.sites, tt.pool), 1e-12)
		})
	}
}

func TestEvaluateZeroIffInfeasible(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 2000; i++ {
		ch := BuildRandomChromosome(rng, threeSites, threePool)
		score := Evaluate(ch, threeSites, threePool)

		infeasible := false
		for _, r := range domain.Resources {
			total := 0
			for s := range threeSites {
				total += ch[s*domain.ResourceCount+int(r)]
			}
			if total > threePool.Capacity(r) {
				infeasible = true
			}
		}

		if infeasible {
			require.Equal(t, 0.0, score)
		} else {
			require.Greater(t, score, 0.0)
			require.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestBuildRandomChromosome(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 500; i++ {
		ch := BuildRandomChromosome(rng, threeSites, threePool)
		require.Len(t, ch, len(threeSites)*domain.ResourceCount)

		for j, gene := range ch {
			require.GreaterOrEqual(t, gene, 0)
			require.LessOrEqual(t, gene, threePool.Capacity(domain.Resource(j%domain.ResourceCount)))
		}
	}
}

func TestInitializePopulation(t *testing.T) {
	pop := InitializePopulation(newTestRand(), threeSites, threePool, 20)
	require.Len(t, pop, 20)

	// 每个个体必须拥有独立的底层数组
	pop[0][0] = -1
	for _, ch := range pop[1:] {
		assert.NotEqual(t, -1, ch[0])
	}
}

func TestRank(t *testing.T) {
	pop := []Chromosome{
		{0, 0, 0},      // 1/114
		{10, 3, 100},   // 1
		{30, 0, 0},     // 0
		{10, 3, 99},    // 1/2
		{11, 4, 101},   // 1，与第二个相同
		{0, 0, 0},      // 1/114，与第一个相同
		{10, 3, 1000},  // 0
	}

	ranked := Rank(pop, oneSite, onePool)
	require.Len(t, ranked, len(pop))

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Fitness, ranked[i].Fitness)
	}

	// 相同适应度保持原来的相对顺序
	assert.Equal(t, Chromosome{10, 3, 100}, ranked[0].Chromosome)
	assert.Equal(t, Chromosome{11, 4, 101}, ranked[1].Chromosome)
	assert.Equal(t, Chromosome{30, 0, 0}, ranked[5].Chromosome)
	assert.Equal(t, Chromosome{10, 3, 1000}, ranked[6].Chromosome)

	// 排序结果是原种群的一个排列
	seen := make(map[*int]int)
	for _, ch := range pop {
		seen[&ch[0]]++
	}
	for _, s := range ranked {
		seen[&s.Chromosome[0]]--
	}
	for _, cnt := range seen {
		assert.Equal(t, 0, cnt)
	}
}

func TestSelect(t *testing.T) {
	rng := newTestRand()
	pop := InitializePopulation(rng, threeSites, threePool, 30)
	ranked := Rank(pop, threeSites, threePool)

	for _, eliteCount := range []int{1, 2, 5, 30} {
		selected, err := Select(rng, ranked, eliteCount)
		require.NoError(t, err)
		require.Len(t, selected, len(ranked))

		for i := 0; i < eliteCount; i++ {
			assert.Equal(t, ranked[i].Chromosome, selected[i])
		}
	}
}

func TestSelectEliteCountOutOfRange(t *testing.T) {
	rng := newTestRand()
	ranked := Rank(InitializePopulation(rng, oneSite, onePool, 5), oneSite, onePool)

	for _, eliteCount := range []int{0, -1, 6} {
		_, err := Select(rng, ranked, eliteCount)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.ErrorIs(t, err, ErrEliteCountOutOfRange)
	}
}

func TestSelectDoesNotAliasRankedPopulation(t *testing.T) {
	rng := newTestRand()
	ranked := Rank(InitializePopulation(rng, oneSite, onePool, 6), oneSite, onePool)

	selected, err := Select(rng, ranked, 2)
	require.NoError(t, err)

	for _, ch := range selected {
		ch[0] = -1
	}
	for _, s := range ranked {
		assert.NotEqual(t, -1, s.Chromosome[0])
	}
}

func TestTournamentNeverPicksWorstOfThree(t *testing.T) {
	rng := newTestRand()

	// 三个个体时，锦标赛必然抽到全部三个，胜者只能是最优的那个
	ranked := []Scored{
		{Chromosome: Chromosome{1}, Fitness: 0.9},
		{Chromosome: Chromosome{2}, Fitness: 0.5},
		{Chromosome: Chromosome{3}, Fitness: 0.1},
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, Chromosome{1}, tournament(rng, ranked))
	}

	// 最差的个体永远不可能赢得锦标赛
	ranked = append(ranked, Scored{Chromosome: Chromosome{4}, Fitness: 0.05})
	for i := 0; i < 500; i++ {
		assert.NotEqual(t, Chromosome{4}, tournament(rng, ranked))
	}
}

func TestTournamentWithTwoIndividuals(t *testing.T) {
	rng := newTestRand()
	ranked := []Scored{
		{Chromosome: Chromosome{1}, Fitness: 0.2},
		{Chromosome: Chromosome{2}, Fitness: 0.7},
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, Chromosome{2}, tournament(rng, ranked))
	}
}

func TestSampleDistinct(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 1000; i++ {
		picked := sampleDistinct(rng, 5, 3)
		require.Len(t, picked, 3)
		assert.NotEqual(t, picked[0], picked[1])
		assert.NotEqual(t, picked[0], picked[2])
		assert.NotEqual(t, picked[1], picked[2])
		for _, idx := range picked {
			assert.True(t, idx >= 0 && idx < 5)
		}
	}
}

func TestCrossover(t *testing.T) {
	rng := newTestRand()
	a := Chromosome{1, 1, 1, 1, 1, 1, 1, 1, 1}
	b := Chromosome{2, 2, 2, 2, 2, 2, 2, 2, 2}

	cuts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		child := Crossover(rng, a, b)
		require.Len(t, child, len(a))

		// 子代形如 1...1 2...2，且两段都非空
		cut := 0
		for cut < len(child) && child[cut] == 1 {
			cut++
		}
		require.GreaterOrEqual(t, cut, 1)
		require.LessOrEqual(t, cut, len(a)-1)
		for _, gene := range child[cut:] {
			require.Equal(t, 2, gene)
		}
		cuts[cut]++
	}

	// 每一个合法切点都应该出现过
	assert.Len(t, cuts, len(a)-1)

	// 父本不会被修改
	assert.Equal(t, Chromosome{1, 1, 1, 1, 1, 1, 1, 1, 1}, a)
	assert.Equal(t, Chromosome{2, 2, 2, 2, 2, 2, 2, 2, 2}, b)
}

func TestCrossoverGenesComeFromParents(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 200; i++ {
		a := BuildRandomChromosome(rng, threeSites, threePool)
		b := BuildRandomChromosome(rng, threeSites, threePool)
		child := Crossover(rng, a, b)

		for j := range child {
			assert.True(t, child[j] == a[j] || child[j] == b[j])
		}
	}
}

func TestMutateWithZeroRate(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 100; i++ {
		ch := BuildRandomChromosome(rng, threeSites, threePool)
		want := ch.Clone()
		assert.Equal(t, want, Mutate(rng, ch, 0, threePool))
	}
}

func TestMutateWithFullRate(t *testing.T) {
	rng := newTestRand()
	pool := domain.ResourcePool{TotalVolunteers: 1000, TotalTrucks: 1000, TotalPackages: 1000}

	// 所有基因都被设置为超出变异范围的值，完全变异后每个基因都必须落在 [0, cap/2] 内
	for i := 0; i < 200; i++ {
		ch := Chromosome{999, 999, 999, 999, 999, 999}
		got := Mutate(rng, ch, 1, pool)
		for _, gene := range got {
			require.GreaterOrEqual(t, gene, 0)
			require.LessOrEqual(t, gene, 500)
		}
	}
}

func TestMutateWithFullRateResamplesEveryGene(t *testing.T) {
	rng := newTestRand()
	pool := domain.ResourcePool{TotalVolunteers: 1000, TotalTrucks: 1000, TotalPackages: 1000}

	const trials = 200
	seen := make([]map[int]bool, 6)
	for i := range seen {
		seen[i] = make(map[int]bool)
	}

	for i := 0; i < trials; i++ {
		got := Mutate(rng, Chromosome{-1, -1, -1, -1, -1, -1}, 1, pool)
		for j, gene := range got {
			require.NotEqual(t, -1, gene, "基因 %d 没有被变异", j)
			seen[j][gene] = true
		}
	}

	// 每个位置都应在 [0, 500] 中取到大量不同的值
	for j, values := range seen {
		assert.Greater(t, len(values), trials/2, "基因 %d 的取值过于集中", j)
	}
}

func TestMutateRange(t *testing.T) {
	rng := newTestRand()

	for i := 0; i < 500; i++ {
		ch := Mutate(rng, make(Chromosome, 9), 0.5, threePool)
		for j, gene := range ch {
			require.LessOrEqual(t, gene, threePool.Capacity(domain.Resource(j%domain.ResourceCount))/2)
		}
	}
}

func TestMutateRateIsRespected(t *testing.T) {
	rng := newTestRand()
	pool := domain.ResourcePool{TotalVolunteers: 1000, TotalTrucks: 1000, TotalPackages: 1000}

	const trials = 2000
	mutated := 0
	for i := 0; i < trials; i++ {
		ch := Mutate(rng, Chromosome{-1, -1, -1}, 0.3, pool)
		for _, gene := range ch {
			if gene != -1 {
				mutated++
			}
		}
	}

	assert.InDelta(t, 0.3, float64(mutated)/float64(trials*3), 0.03)
}
