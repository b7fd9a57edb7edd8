package domain

import "time"

type SiteAllocation struct {
	SiteName            string `json:"siteName"`
	RequiredVolunteers  int    `json:"requiredVolunteers"`
	AllocatedVolunteers int    `json:"allocatedVolunteers"`
	RequiredTrucks      int    `json:"requiredTrucks"`
	AllocatedTrucks     int    `json:"allocatedTrucks"`
	RequiredPackages    int    `json:"requiredPackages"`
	AllocatedPackages   int    `json:"allocatedPackages"`
	Shortfall           int    `json:"shortfall"`
}

type AllocationResult struct {
	Allocations         []SiteAllocation `json:"allocations"`
	Score               float64          `json:"score"`
	FitnessHistory      []float64        `json:"fitnessHistory"`
	TotalVolunteersUsed int              `json:"totalVolunteersUsed"`
	TotalTrucksUsed     int              `json:"totalTrucksUsed"`
	TotalPackagesUsed   int              `json:"totalPackagesUsed"`
}

type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
	RunStatusFailed   RunStatus = "failed"
)

// RunSnapshot 是一次运行在某个时刻的状态，只保存在 redis 中，过期后即消失
type RunSnapshot struct {
	ID               string            `json:"id"`
	ScenarioID       int64             `json:"scenarioID"`
	ScenarioName     string            `json:"scenarioName"`
	Status           RunStatus         `json:"status"`
	Generation       int               `json:"generation"`
	TotalGenerations int               `json:"totalGenerations"`
	FitnessHistory   []float64         `json:"fitnessHistory"`
	Result           *AllocationResult `json:"result"`
	Error            string            `json:"error,omitempty"`
	StartedAt        time.Time         `json:"startedAt"`
	FinishedAt       *time.Time        `json:"finishedAt"`
}
