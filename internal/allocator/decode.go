package allocator

import "github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"

// Decode 将扁平的染色体还原为每个需求点的分配记录
func Decode(ch Chromosome, sites []domain.Site) []domain.SiteAllocation {
	allocations := make([]domain.SiteAllocation, len(sites))

	for i, site := range sites {
		gene := ch[i*domain.ResourceCount : (i+1)*domain.ResourceCount]
		allocations[i] = domain.SiteAllocation{
			SiteName:            site.Name,
			RequiredVolunteers:  site.RequiredVolunteers,
			AllocatedVolunteers: gene[domain.ResourceVolunteers],
			RequiredTrucks:      site.RequiredTrucks,
			AllocatedTrucks:     gene[domain.ResourceTrucks],
			RequiredPackages:    site.RequiredPackages,
			AllocatedPackages:   gene[domain.ResourcePackages],
		}

		for _, r := range domain.Resources {
			allocations[i].Shortfall += max(0, site.Required(r)-gene[r])
		}
	}

	return allocations
}

// BuildResult 组装对外返回的分配结果
func BuildResult(ch Chromosome, score float64, history []float64, sites []domain.Site) *domain.AllocationResult {
	result := &domain.AllocationResult{
		Allocations:    Decode(ch, sites),
		Score:          score,
		FitnessHistory: history,
	}

	if result.FitnessHistory == nil {
		result.FitnessHistory = []float64{}
	}

	for _, a := range result.Allocations {
		result.TotalVolunteersUsed += a.AllocatedVolunteers
		result.TotalTrucksUsed += a.AllocatedTrucks
		result.TotalPackagesUsed += a.AllocatedPackages
	}

	return result
}
