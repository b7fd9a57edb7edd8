package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/allocator"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/scenariofile"
)

func main() {
	var file string
	var baseline string
	var seed uint64
	parameters := &allocator.Parameters{}

	flag.StringVar(&file, "file", "", "YAML 场景文件路径")
	flag.IntVar(&parameters.PopulationSize, "population", 50, "种群大小")
	flag.IntVar(&parameters.GenerationCount, "generations", 100, "迭代次数")
	flag.Float64Var(&parameters.MutationRate, "mutation", 0.1, "每个基因的变异概率")
	flag.IntVar(&parameters.EliteCount, "elite", 2, "每一代直接保留的精英个数")
	flag.Uint64Var(&seed, "seed", 0, "随机数种子，不指定时每次运行结果不同")
	flag.StringVar(&baseline, "baseline", "", "同时输出基线分配结果 (greedy 或 proportional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if file == "" {
		logger.Error("请通过 -file 指定场景文件")
		os.Exit(2)
	}

	f, err := scenariofile.Load(file)
	if err != nil {
		logger.Error("无法读取场景文件", "error", err)
		os.Exit(1)
	}

	// 命令行中显式给出的参数优先于文件中的参数
	explicit := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
	resolveParameters(parameters, f.Parameters, explicit, seed)

	sc := f.Scenario()
	if err := run(os.Stdout, sc, parameters, baseline); err != nil {
		logger.Error("运行失败", "error", err)
		os.Exit(1)
	}
}

func resolveParameters(parameters *allocator.Parameters, fromFile *scenariofile.Parameters, explicit map[string]bool, seed uint64) {
	flagged := *parameters
	fromFile.ApplyTo(parameters)

	if explicit["population"] {
		parameters.PopulationSize = flagged.PopulationSize
	}
	if explicit["generations"] {
		parameters.GenerationCount = flagged.GenerationCount
	}
	if explicit["mutation"] {
		parameters.MutationRate = flagged.MutationRate
	}
	if explicit["elite"] {
		parameters.EliteCount = flagged.EliteCount
	}
	if explicit["seed"] {
		parameters.Seed = &seed
	}
}

func run(w io.Writer, sc *domain.Scenario, parameters *allocator.Parameters, baseline string) error {
	a, err := allocator.New(parameters, sc.Sites, sc.Pool)
	if err != nil {
		return err
	}

	res, err := a.Run(func(generation int, total int, history []float64) {
		slog.Info("已完成一代", "generation", generation, "total", total, "best", history[len(history)-1])
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "场景: %s\n遗传算法得分: %.6f\n", sc.Name, res.BestScore)
	printAllocation(w, allocator.BuildResult(res.BestChromosome, res.BestScore, res.FitnessHistory, sc.Sites))

	if baseline == "" {
		return nil
	}

	ch, err := allocator.Baseline(allocator.BaselineMode(baseline), sc.Sites, sc.Pool)
	if err != nil {
		return err
	}
	score := allocator.Evaluate(ch, sc.Sites, sc.Pool)
	fmt.Fprintf(w, "\n基线 %s 得分: %.6f\n", baseline, score)
	printAllocation(w, allocator.BuildResult(ch, score, nil, sc.Sites))

	return nil
}

func printAllocation(w io.Writer, result *domain.AllocationResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "需求点\t志愿者\t卡车\t物资包\t缺口")
	for _, a := range result.Allocations {
		fmt.Fprintf(tw, "%s\t%d/%d\t%d/%d\t%d/%d\t%d\n",
			a.SiteName,
			a.AllocatedVolunteers, a.RequiredVolunteers,
			a.AllocatedTrucks, a.RequiredTrucks,
			a.AllocatedPackages, a.RequiredPackages,
			a.Shortfall,
		)
	}
	fmt.Fprintf(tw, "合计\t%d\t%d\t%d\t\n", result.TotalVolunteersUsed, result.TotalTrucksUsed, result.TotalPackagesUsed)
	_ = tw.Flush()
}
