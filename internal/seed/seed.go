package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/scenariofile"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/utils"
)

// 需求点 CSV 的表头，paket 列可以省略
const (
	headerName       = "nama"
	headerVolunteers = "relawan"
	headerTrucks     = "truk"
	headerPackages   = "paket"
)

// 遗传算法页面导出的文件使用 kebutuhan_ 前缀的表头
var headerAliases = map[string]string{
	"kebutuhan_relawan": headerVolunteers,
	"kebutuhan_truk":    headerTrucks,
	"kebutuhan_paket":   headerPackages,
}

type ScenarioCreator interface {
	CreateScenario(sc *domain.Scenario) error
}

// ParseSitesCSV 读取需求点，列的顺序不限，多余的列会被忽略
func ParseSitesCSV(r io.Reader) ([]domain.Site, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("文件为空")
		}
		return nil, err
	}

	columns := make(map[string]int)
	for i, header := range headers {
		name := strings.ToLower(strings.TrimSpace(header))
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		if _, ok := columns[name]; ok {
			return nil, fmt.Errorf("%s 列重复", name)
		}
		columns[name] = i
	}
	for _, required := range []string{headerName, headerVolunteers, headerTrucks} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("没有找到 %s 列", required)
		}
	}

	readInt := func(row []string, header string, line int) (int, error) {
		idx, ok := columns[header]
		if !ok || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(strings.TrimSpace(row[idx]))
		if err != nil {
			return 0, fmt.Errorf("第 %d 行的 %s 不是整数: %q", line, header, row[idx])
		}
		return v, nil
	}

	sites := []domain.Site{}
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		site := domain.Site{
			Name: strings.TrimSpace(row[columns[headerName]]),
		}
		site.Code = utils.GenerateSiteCode(site.Name)

		if site.RequiredVolunteers, err = readInt(row, headerVolunteers, line); err != nil {
			return nil, err
		}
		if site.RequiredTrucks, err = readInt(row, headerTrucks, line); err != nil {
			return nil, err
		}
		if site.RequiredPackages, err = readInt(row, headerPackages, line); err != nil {
			return nil, err
		}

		sites = append(sites, site)
	}

	return sites, nil
}

// ImportSitesCSV 把 CSV 中的需求点和给定的资源总量一起作为一个新场景写入数据库
func ImportSitesCSV(repo ScenarioCreator, r io.Reader, name string, pool domain.ResourcePool) (*domain.Scenario, error) {
	sites, err := ParseSitesCSV(r)
	if err != nil {
		return nil, err
	}

	sc := &domain.Scenario{
		Name:        name,
		Description: fmt.Sprintf("从 CSV 导入的 %d 个需求点", len(sites)),
		Pool:        pool,
		Sites:       sites,
	}
	if err := utils.ValidateScenario(sc); err != nil {
		return nil, err
	}

	if err := repo.CreateScenario(sc); err != nil {
		return nil, err
	}

	slog.Info("导入需求点完成", "scenario", sc.ID, "sites", len(sc.Sites))
	return sc, nil
}

func ImportSitesCSVFile(repo ScenarioCreator, path string, name string, pool domain.ResourcePool) (*domain.Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ImportSitesCSV(repo, file, name, pool)
}

func ImportScenarioFile(repo ScenarioCreator, path string) (*domain.Scenario, error) {
	f, err := scenariofile.Load(path)
	if err != nil {
		return nil, err
	}

	sc := f.Scenario()
	if err := repo.CreateScenario(sc); err != nil {
		return nil, err
	}

	slog.Info("导入场景完成", "scenario", sc.ID, "name", sc.Name)
	return sc, nil
}
