// Package scenariofile 读取 YAML 格式的场景文件，供 seed 和 allocate 命令使用
package scenariofile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/allocator"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

type File struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Pool        Pool        `yaml:"pool"`
	Sites       []Site      `yaml:"sites"`
	Parameters  *Parameters `yaml:"parameters"`
}

type Pool struct {
	Volunteers int `yaml:"volunteers"`
	Trucks     int `yaml:"trucks"`
	Packages   int `yaml:"packages"`
}

type Site struct {
	Name       string `yaml:"name"`
	Volunteers int    `yaml:"volunteers"`
	Trucks     int    `yaml:"trucks"`
	Packages   int    `yaml:"packages"`
}

// Parameters 中为 nil 的字段由调用方决定默认值
type Parameters struct {
	PopulationSize  *int     `yaml:"population_size"`
	GenerationCount *int     `yaml:"generation_count"`
	MutationRate    *float64 `yaml:"mutation_rate"`
	EliteCount      *int     `yaml:"elite_count"`
	Seed            *uint64  `yaml:"seed"`
}

func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	f := &File{}
	if err := dec.Decode(f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("场景文件为空")
		}
		return nil, fmt.Errorf("无法解析场景文件: %w", err)
	}

	if err := utils.ValidateScenario(f.Scenario()); err != nil {
		return nil, err
	}

	return f, nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Scenario 按文件中的顺序生成需求点，并根据名称生成 code
func (f *File) Scenario() *domain.Scenario {
	sc := &domain.Scenario{
		Name:        f.Name,
		Description: f.Description,
		Pool: domain.ResourcePool{
			TotalVolunteers: f.Pool.Volunteers,
			TotalTrucks:     f.Pool.Trucks,
			TotalPackages:   f.Pool.Packages,
		},
		Sites: make([]domain.Site, 0, len(f.Sites)),
	}

	for _, s := range f.Sites {
		sc.Sites = append(sc.Sites, domain.Site{
			Name:               s.Name,
			Code:               utils.GenerateSiteCode(s.Name),
			RequiredVolunteers: s.Volunteers,
			RequiredTrucks:     s.Trucks,
			RequiredPackages:   s.Packages,
		})
	}

	return sc
}

// ApplyTo 用文件中给出的参数覆盖 base
func (p *Parameters) ApplyTo(base *allocator.Parameters) {
	if p == nil {
		return
	}
	if p.PopulationSize != nil {
		base.PopulationSize = *p.PopulationSize
	}
	if p.GenerationCount != nil {
		base.GenerationCount = *p.GenerationCount
	}
	if p.MutationRate != nil {
		base.MutationRate = *p.MutationRate
	}
	if p.EliteCount != nil {
		base.EliteCount = *p.EliteCount
	}
	if p.Seed != nil {
		base.Seed = p.Seed
	}
}
