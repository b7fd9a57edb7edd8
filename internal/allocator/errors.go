package allocator

import (
	"errors"
	"fmt"
	"math"
)

// MaxQuantity 是资源总量和单个需求量的上限，保证求和与随机取值时不会溢出
const MaxQuantity = math.MaxInt32

var (
	ErrPopulationTooSmall     = errors.New("种群大小不能小于 2")
	ErrEliteCountOutOfRange   = errors.New("精英数量必须在 1 到种群大小之间")
	ErrNoSites                = errors.New("至少需要一个需求点")
	ErrMutationRateOutOfRange = errors.New("变异概率必须在 0 到 1 之间")
	ErrNegativeGenerations    = errors.New("迭代次数不能为负数")
	ErrNegativeQuantity       = errors.New("需求量和资源总量不能为负数")
	ErrQuantityTooLarge       = fmt.Errorf("需求量和资源总量不能超过 %d", MaxQuantity)
	ErrUnknownBaseline        = errors.New("未知的对比分配方式")
)

// ConfigError 表示运行开始前就能发现的参数错误
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("参数 %s 不合法: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
