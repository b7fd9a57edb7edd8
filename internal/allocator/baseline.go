package allocator

import (
	"math"
	"sort"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

type BaselineMode string

const (
	BaselineGreedy       BaselineMode = "greedy"
	BaselineProportional BaselineMode = "proportional"
)

// Baseline 用非进化的方式直接给出一个分配方案，用于和遗传算法的结果对比
func Baseline(mode BaselineMode, sites []domain.Site, pool domain.ResourcePool) (Chromosome, error) {
	switch mode {
	case BaselineGreedy:
		return Greedy(sites, pool), nil
	case BaselineProportional:
		return Proportional(sites, pool), nil
	default:
		return nil, &ConfigError{Field: "mode", Err: ErrUnknownBaseline}
	}
}

// Greedy 按需求从大到小依次满足每个需求点，直到资源耗尽
// 排序依次比较志愿者、卡车、物资包的需求量
func Greedy(sites []domain.Site, pool domain.ResourcePool) Chromosome {
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := sites[order[i]], sites[order[j]]
		for _, r := range domain.Resources {
			if a.Required(r) != b.Required(r) {
				return a.Required(r) > b.Required(r)
			}
		}
		return false
	})

	var remaining [domain.ResourceCount]int
	for _, r := range domain.Resources {
		remaining[r] = pool.Capacity(r)
	}

	ch := make(Chromosome, len(sites)*domain.ResourceCount)
	for _, i := range order {
		for _, r := range domain.Resources {
			alloc := min(sites[i].Required(r), remaining[r])
			ch[i*domain.ResourceCount+int(r)] = alloc
			remaining[r] -= alloc
		}
	}

	return ch
}

// Proportional 按需求占比分配资源总量，四舍六入五成双
// 取整后的总和可能略微超过资源总量，此时适应度为 0
func Proportional(sites []domain.Site, pool domain.ResourcePool) Chromosome {
	var totalRequired [domain.ResourceCount]int
	for _, site := range sites {
		for _, r := range domain.Resources {
			totalRequired[r] += site.Required(r)
		}
	}

	ch := make(Chromosome, len(sites)*domain.ResourceCount)
	for i, site := range sites {
		for _, r := range domain.Resources {
			if totalRequired[r] == 0 {
				continue
			}
			share := float64(site.Required(r)) / float64(totalRequired[r]) * float64(pool.Capacity(r))
			ch[i*domain.ResourceCount+int(r)] = int(math.RoundToEven(share))
		}
	}

	return ch
}
