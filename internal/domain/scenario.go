package domain

import "time"

// Scenario 是一次灾情下的需求点集合以及可调配的资源总量
type Scenario struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Pool        ResourcePool `json:"pool"`
	Sites       []Site       `json:"sites"`
	CreatedAt   time.Time    `json:"createdAt"`
	Version     int32        `json:"-"`
}
