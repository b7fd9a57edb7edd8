package allocator

import "slices"

// Chromosome: 一个候选的分配方案
// 下标 3i、3i+1、3i+2 依次为第 i 个需求点分到的志愿者、卡车、物资包数量
type Chromosome []int

func (ch Chromosome) Clone() Chromosome {
	return slices.Clone(ch)
}

// Scored 是带有适应度的染色体
type Scored struct {
	Chromosome Chromosome
	Fitness    float64
}

// 遗传算法参数
type Parameters struct {
	PopulationSize  int     // 种群大小
	GenerationCount int     // 迭代次数
	MutationRate    float64 // 每个基因的变异概率
	EliteCount      int     // 精英数量
	Seed            *uint64 // 随机数种子，为 nil 时每次 Run 的结果都不同
}

type RunResult struct {
	BestChromosome Chromosome
	BestScore      float64
	FitnessHistory []float64 // 每一代最优个体的适应度
}

// ProgressFunc 在每一代评估结束后被同步调用一次
// generation 从 1 开始，history 为截至当前代的最优适应度记录
type ProgressFunc func(generation int, total int, history []float64)
