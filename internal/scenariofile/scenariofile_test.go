package scenariofile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/allocator"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

const sample = `
name: Banjir Bandung
description: 四个救援点的示例场景
pool:
  volunteers: 30
  trucks: 7
sites:
  - name: Posko A
    volunteers: 10
    trucks: 3
  - name: 临时安置点
    volunteers: 7
    trucks: 2
    packages: 40
parameters:
  population_size: 20
  seed: 5
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	sc := f.Scenario()
	assert.Equal(t, "Banjir Bandung", sc.Name)
	assert.Equal(t, domain.ResourcePool{TotalVolunteers: 30, TotalTrucks: 7}, sc.Pool)
	require.Len(t, sc.Sites, 2)
	assert.Equal(t, "posko-a", sc.Sites[0].Code)
	assert.Equal(t, "lin-shi-an-zhi-dian", sc.Sites[1].Code)
	assert.Equal(t, 40, sc.Sites[1].RequiredPackages)
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "空文件", data: ""},
		{name: "未知字段", data: "name: x\nunknown: 1\nsites:\n  - name: a\n"},
		{name: "没有需求点", data: "name: x\npool:\n  volunteers: 1\n"},
		{name: "需求量为负数", data: "name: x\nsites:\n  - name: a\n    trucks: -1\n"},
		{name: "需求点重名", data: "name: x\nsites:\n  - name: a\n  - name: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Sites, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParametersApplyTo(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	base := &allocator.Parameters{PopulationSize: 50, GenerationCount: 100, MutationRate: 0.1, EliteCount: 2}
	f.Parameters.ApplyTo(base)

	assert.Equal(t, 20, base.PopulationSize)
	assert.Equal(t, 100, base.GenerationCount)
	require.NotNil(t, base.Seed)
	assert.Equal(t, uint64(5), *base.Seed)

	var none *Parameters
	none.ApplyTo(base)
	assert.Equal(t, 20, base.PopulationSize)
}
