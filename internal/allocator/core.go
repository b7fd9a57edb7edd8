package allocator

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

const tournamentSize = 3

// BuildRandomChromosome 随机初始化一个染色体
// 每个基因都在 [0, 该资源总量] 中均匀取值，单个需求点可能分到全部资源，所以大多数随机个体都是不可行的
func BuildRandomChromosome(rng *rand.Rand, sites []domain.Site, pool domain.ResourcePool) Chromosome {
	ch := make(Chromosome, 0, len(sites)*domain.ResourceCount)

	for range sites {
		for _, r := range domain.Resources {
			ch = append(ch, rng.IntN(pool.Capacity(r)+1))
		}
	}

	return ch
}

func InitializePopulation(rng *rand.Rand, sites []domain.Site, pool domain.ResourcePool, size int) []Chromosome {
	pop := make([]Chromosome, size)
	for i := range pop {
		pop[i] = BuildRandomChromosome(rng, sites, pool)
	}
	return pop
}

/**
 * 计算染色体的适应度
 * 1. 任意一类资源的分配总量超过资源总量时，适应度为 0
 * 2. 否则 fitness = 1 / (shortfall + 1)
 * 其中 shortfall 为所有需求点、所有资源类型上未被满足的需求之和，多分配的部分不会抵消其他需求点的缺口
 */
func Evaluate(ch Chromosome, sites []domain.Site, pool domain.ResourcePool) float64 {
	for _, r := range domain.Resources {
		capacity := pool.Capacity(r)
		total := 0
		for i := range sites {
			// total 始终不超过 capacity，所以 capacity-total 不会溢出
			gene := ch[i*domain.ResourceCount+int(r)]
			if gene > capacity-total {
				return 0
			}
			total += gene
		}
	}

	return 1 / float64(Shortfall(ch, sites)+1)
}

// Shortfall 计算总的未满足需求
func Shortfall(ch Chromosome, sites []domain.Site) int {
	shortfall := 0
	for i, site := range sites {
		for _, r := range domain.Resources {
			shortfall += max(0, site.Required(r)-ch[i*domain.ResourceCount+int(r)])
		}
	}
	return shortfall
}

// Rank 计算整个种群的适应度并按适应度从高到低排序，适应度相同的个体保持原来的相对顺序
func Rank(pop []Chromosome, sites []domain.Site, pool domain.ResourcePool) []Scored {
	ranked := make([]Scored, len(pop))
	for i, ch := range pop {
		ranked[i] = Scored{
			Chromosome: ch,
			Fitness:    Evaluate(ch, sites, pool),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})

	return ranked
}

// Select 生成父本池
// 前 eliteCount 个直接取排名最靠前的个体，其余的每一个都通过锦标赛选择得到
func Select(rng *rand.Rand, ranked []Scored, eliteCount int) ([]Chromosome, error) {
	if eliteCount < 1 || eliteCount > len(ranked) {
		return nil, &ConfigError{Field: "eliteCount", Err: ErrEliteCountOutOfRange}
	}

	selected := make([]Chromosome, 0, len(ranked))
	for _, s := range ranked[:eliteCount] {
		selected = append(selected, s.Chromosome.Clone())
	}

	for len(selected) < len(ranked) {
		selected = append(selected, tournament(rng, ranked).Clone())
	}

	return selected, nil
}

// 锦标赛选择
// 从整个种群中无放回地抽取若干个体，返回适应度最高的那个，适应度相同时取先抽到的
func tournament(rng *rand.Rand, ranked []Scored) Chromosome {
	contestants := sampleDistinct(rng, len(ranked), min(tournamentSize, len(ranked)))

	winner := ranked[contestants[0]]
	for _, idx := range contestants[1:] {
		if ranked[idx].Fitness > winner.Fitness {
			winner = ranked[idx]
		}
	}

	return winner.Chromosome
}

// 从 [0, n) 中无放回地抽取 k 个下标，按抽取顺序返回
func sampleDistinct(rng *rand.Rand, n int, k int) []int {
	picked := make([]int, 0, k)
	for len(picked) < k {
		idx := rng.IntN(n)
		if slices.Contains(picked, idx) {
			continue
		}
		picked = append(picked, idx)
	}
	return picked
}

// 单点交叉
// 切点在 [1, L-1] 中均匀选取，子代 = a[:cut] + b[cut:]，不会修改两个父本
func Crossover(rng *rand.Rand, a Chromosome, b Chromosome) Chromosome {
	length := len(a)

	if length != len(b) || length < 2 {
		// 按理来说两个染色体的长度应该能保证是相等的
		// 这里只是以防万一
		return a.Clone()
	}

	cut := 1 + rng.IntN(length-1)

	child := make(Chromosome, length)
	copy(child[:cut], a[:cut])
	copy(child[cut:], b[cut:])

	return child
}

// 变异
// 每个基因以 mutationRate 的概率被替换为 [0, 对应资源总量/2] 中的随机值，直接在传入的染色体上修改
func Mutate(rng *rand.Rand, ch Chromosome, mutationRate float64, pool domain.ResourcePool) Chromosome {
	for i := range ch {
		if rng.Float64() >= mutationRate {
			continue
		}

		limit := pool.Capacity(domain.Resource(i%domain.ResourceCount)) / 2
		ch[i] = rng.IntN(limit + 1)
	}

	return ch
}
