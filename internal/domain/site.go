package domain

// Resource 表示三类稀缺资源，顺序与染色体中每个三元组的顺序一致
type Resource int

const (
	ResourceVolunteers Resource = iota
	ResourceTrucks
	ResourcePackages
)

// ResourceCount 是每个需求点在染色体中占用的基因数
const ResourceCount = 3

var Resources = [ResourceCount]Resource{ResourceVolunteers, ResourceTrucks, ResourcePackages}

func (r Resource) String() string {
	switch r {
	case ResourceVolunteers:
		return "volunteers"
	case ResourceTrucks:
		return "trucks"
	case ResourcePackages:
		return "packages"
	default:
		return "unknown"
	}
}

type Site struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Code               string `json:"code"`
	RequiredVolunteers int    `json:"requiredVolunteers"`
	RequiredTrucks     int    `json:"requiredTrucks"`
	RequiredPackages   int    `json:"requiredPackages"`
}

func (s Site) Required(r Resource) int {
	switch r {
	case ResourceVolunteers:
		return s.RequiredVolunteers
	case ResourceTrucks:
		return s.RequiredTrucks
	case ResourcePackages:
		return s.RequiredPackages
	default:
		return 0
	}
}

type ResourcePool struct {
	TotalVolunteers int `json:"totalVolunteers"`
	TotalTrucks     int `json:"totalTrucks"`
	TotalPackages   int `json:"totalPackages"`
}

func (p ResourcePool) Capacity(r Resource) int {
	switch r {
	case ResourceVolunteers:
		return p.TotalVolunteers
	case ResourceTrucks:
		return p.TotalTrucks
	case ResourcePackages:
		return p.TotalPackages
	default:
		return 0
	}
}
