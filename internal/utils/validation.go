package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

func ValidateResourcePool(pool domain.ResourcePool) error {
	for _, r := range domain.Resources {
		if pool.Capacity(r) < 0 {
			return fmt.Errorf("资源 %s 的总量不能为负数", r)
		}
	}
	return nil
}

func ValidateScenario(sc *domain.Scenario) error {
	if len(sc.Sites) == 0 {
		return errors.New("场景中至少需要一个需求点")
	}

	if err := ValidateResourcePool(sc.Pool); err != nil {
		return err
	}

	// 检查每个需求点的需求量以及名称是否重复
	seen := make(map[string]bool)
	for i, site := range sc.Sites {
		if site.Name == "" {
			return fmt.Errorf("第 %d 个需求点的名称不能为空", i+1)
		}
		if seen[site.Name] {
			return fmt.Errorf("需求点 %s 重复", site.Name)
		}
		seen[site.Name] = true

		for _, r := range domain.Resources {
			if site.Required(r) < 0 {
				return fmt.Errorf("需求点 %s 对资源 %s 的需求量不能为负数", site.Name, r)
			}
		}
	}

	return nil
}
